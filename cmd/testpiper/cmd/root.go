// Package cmd implements the command-line interface for TestPiper.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/nandakiran-r/TestPiper/artifacts"
	"github.com/nandakiran-r/TestPiper/internal/viper"
	"github.com/nandakiran-r/TestPiper/version"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	spfviper "github.com/spf13/viper"
)

var configFileUsed bool

func init() {
	cobra.OnInitialize(func() { initConfig(viper.Instance()) })
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              "testpiper",
		Short:            "Piper text-to-speech release and serving tool.",
		Long:             "A utility that builds, tags, and publishes the Piper text-to-speech container image, and serves the bundled voice model over HTTP.",
		Version:          version.Version.String(),
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: preRunConfig,
	}

	viper := viper.Instance()
	rootCmd.PersistentFlags().String("logfile", "", "Where the execution logfile will be written. (env: TESTPIPER_LOGFILE)")
	_ = viper.BindPFlag("logfile", rootCmd.PersistentFlags().Lookup("logfile"))

	rootCmd.PersistentFlags().String("loglevel", "", "The verbosity of the testpiper tool itself. Ex. warn, debug, trace, info, error. (env: TESTPIPER_LOGLEVEL)")
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))

	rootCmd.PersistentFlags().String("artifacts", "", "Where release artifacts and the release ledger are written. (env: TESTPIPER_ARTIFACTS)")
	_ = viper.BindPFlag("artifacts", rootCmd.PersistentFlags().Lookup("artifacts"))

	rootCmd.PersistentFlags().String("docker-config", "", "Path to the registry credentials in a docker config.json format. (env: TESTPIPER_DOCKERCONFIG)")
	_ = viper.BindPFlag("dockerConfig", rootCmd.PersistentFlags().Lookup("docker-config"))

	rootCmd.PersistentFlags().Bool("insecure", false, "Allow plain HTTP when talking to the registry. (env: TESTPIPER_INSECURE)")
	_ = viper.BindPFlag("insecure", rootCmd.PersistentFlags().Lookup("insecure"))

	rootCmd.AddCommand(releaseCmd())
	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func Execute() error {
	return rootCmd().ExecuteContext(context.Background())
}

func initConfig(viper *spfviper.Viper) {
	// set up ENV var support
	viper.SetEnvPrefix("testpiper")
	viper.AutomaticEnv()

	// set up optional config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	configFileUsed = true
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(spfviper.ConfigFileNotFoundError); ok {
			configFileUsed = false
		}
	}

	// Set up logging config defaults
	viper.SetDefault("logfile", DefaultLogFile)
	viper.SetDefault("loglevel", DefaultLogLevel)
	viper.SetDefault("artifacts", artifacts.DefaultArtifactsDir)

	// Set up release defaults
	viper.SetDefault("image", DefaultImage)
	viper.SetDefault("dockerfile", DefaultDockerfile)
	viper.SetDefault("context", DefaultBuildContext)

	// Set up serving defaults
	viper.SetDefault("listen", DefaultListenAddr)
	viper.SetDefault("model", DefaultModelPath)
	viper.SetDefault("piper_bin", DefaultPiperBin)
}

// preRunConfig is used by cobra.PreRun in all non-root commands to load all necessary configurations
func preRunConfig(cmd *cobra.Command, args []string) {
	viper := viper.Instance()
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	// set up logging
	logname := viper.GetString("logfile")
	logFile, err := os.OpenFile(logname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err == nil {
		mw := io.MultiWriter(os.Stderr, logFile)
		l.SetOutput(mw)
	} else {
		l.Infof("Failed to log to file, using default stderr")
	}
	if ll, err := logrus.ParseLevel(viper.GetString("loglevel")); err == nil {
		l.SetLevel(ll)
	}

	// keep the package-level logger, used by the engine wrappers, in step
	// with the configured instance
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	logrus.SetOutput(l.Out)
	logrus.SetLevel(l.GetLevel())

	if !configFileUsed {
		l.Debug("config file not found, proceeding without it")
	}

	logger := logrusr.New(l)
	ctx := logr.NewContext(cmd.Context(), logger)
	cmd.SetContext(ctx)
}
