package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/nandakiran-r/TestPiper/internal/piper"
	"github.com/nandakiran-r/TestPiper/internal/runtime"
	"github.com/nandakiran-r/TestPiper/internal/server"
	"github.com/nandakiran-r/TestPiper/internal/viper"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Piper voice model over HTTP",
		Long: "This command starts the HTTP synthesis endpoint. If the voice model " +
			"cannot be loaded the server still starts, and synthesis requests are " +
			"rejected until the model is in place.",
		Args: cobra.NoArgs,
		RunE: serveRunE,
	}

	viper := viper.Instance()
	flags := serveCmd.Flags()

	flags.String("listen", "", "The address to bind the HTTP server to. (env: TESTPIPER_LISTEN)")
	_ = viper.BindPFlag("listen", flags.Lookup("listen"))

	flags.String("model", "", "A path to the voice model to serve. (env: TESTPIPER_MODEL)")
	_ = viper.BindPFlag("model", flags.Lookup("model"))

	flags.String("piper-bin", "", "The piper executable used for synthesis. (env: TESTPIPER_PIPER_BIN)")
	_ = viper.BindPFlag("piper_bin", flags.Lookup("piper-bin"))

	return serveCmd
}

func serveRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("invalid logging configuration")
	}

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	var synth server.Synthesizer
	voice, err := piper.Load(cfg.ModelPath, piper.WithBinary(cfg.PiperBin))
	if err != nil {
		logger.Error(err, "voice model not loaded, synthesis requests will be rejected", "model", cfg.ModelPath)
	} else {
		synth = voice
		logger.Info("voice model loaded", "model", cfg.ModelPath)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(synth).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("listening", "addr", cfg.ListenAddr)
	return httpServer.ListenAndServe()
}
