package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nandakiran-r/TestPiper/artifacts"
	"github.com/nandakiran-r/TestPiper/internal/cli"
	"github.com/nandakiran-r/TestPiper/internal/engine"
	"github.com/nandakiran-r/TestPiper/internal/history"
	"github.com/nandakiran-r/TestPiper/internal/log"
	"github.com/nandakiran-r/TestPiper/internal/registry"
	"github.com/nandakiran-r/TestPiper/internal/release"
	"github.com/nandakiran-r/TestPiper/internal/runtime"
	"github.com/nandakiran-r/TestPiper/internal/viper"

	"github.com/blang/semver"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func releaseCmd() *cobra.Command {
	releaseCmd := &cobra.Command{
		Use:   "release <username> [version]",
		Short: "Build, tag, and push the Piper image",
		Long: "This command builds the container image, tags it against your registry " +
			"account, logs in, and pushes every tag. The latest tag is always produced; " +
			"a version tag is added only when a version other than \"latest\" is given.",
		Example: "  testpiper release alice 2.1",
		Args:    releasePositionalArgs,
		RunE:    releaseRunE,
	}

	viper := viper.Instance()
	flags := releaseCmd.Flags()

	flags.String("image", "", "The unqualified image name to build. (env: TESTPIPER_IMAGE)")
	_ = viper.BindPFlag("image", flags.Lookup("image"))

	flags.String("dockerfile", "", "A relative path to the Dockerfile to build. (env: TESTPIPER_DOCKERFILE)")
	_ = viper.BindPFlag("dockerfile", flags.Lookup("dockerfile"))

	flags.String("context", "", "The build context directory. (env: TESTPIPER_CONTEXT)")
	_ = viper.BindPFlag("context", flags.Lookup("context"))

	flags.Bool("no-cache", false, "Build without using the layer cache. (env: TESTPIPER_NO_CACHE)")
	_ = viper.BindPFlag("no_cache", flags.Lookup("no-cache"))

	flags.Bool("dry-run", false, "Print the docker invocations without running them. (env: TESTPIPER_DRY_RUN)")
	_ = viper.BindPFlag("dry_run", flags.Lookup("dry-run"))

	flags.Bool("verify", false, "After pushing, confirm every tag is listed by the registry. (env: TESTPIPER_VERIFY)")
	_ = viper.BindPFlag("verify", flags.Lookup("verify"))

	releaseCmd.MarkFlagsMutuallyExclusive("dry-run", "verify")

	return releaseCmd
}

// releasePositionalArgs validates the positional arguments. A username
// is mandatory; a version is optional.
func releasePositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("a registry username is required")
	}
	if len(args) > 2 {
		return fmt.Errorf("at most a username and a version are accepted, got %d arguments", len(args))
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed && strings.Contains(f.Value.String(), "--dry-run") {
			// A string flag swallowed --dry-run as its value. Honor the
			// intent so a real release is never started by accident.
			viper.Instance().Set("dry_run", true)
		}
	})

	return nil
}

func releaseRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("invalid logging configuration")
	}

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	username := args[0]
	version := ""
	if len(args) == 2 {
		version = args[1]
	}
	if version != "" && version != "latest" {
		if _, err := semver.ParseTolerant(version); err != nil {
			logger.V(log.DBG).Info("version does not parse as semver, tagging it verbatim", "version", version)
		}
	}

	plan := release.NewPlan(username, cfg.Image, version)

	artifactsWriter, err := artifacts.NewFilesystemWriter(artifacts.WithDirectory(cfg.Artifacts))
	if err != nil {
		return err
	}

	var eng cli.DockerEngine
	opts := []release.RunnerOption{
		release.WithDockerfile(cfg.Dockerfile),
		release.WithContextDir(cfg.BuildContext),
		release.WithNoCache(cfg.NoCache),
	}

	if cfg.DryRun {
		eng = engine.NewDryRunEngine()
	} else {
		eng = engine.NewDockerEngine()

		// The receipt and the ledger only record releases that really
		// ran, so neither is wired up for a dry run.
		ctx = artifacts.ContextWithWriter(ctx, artifactsWriter)

		if err := os.MkdirAll(artifactsWriter.Path(), 0o755); err != nil {
			return fmt.Errorf("could not create artifacts directory: %w", err)
		}
		ledger, err := history.Open(filepath.Join(artifactsWriter.Path(), history.DefaultFilename))
		if err != nil {
			return fmt.Errorf("could not open release ledger: %w", err)
		}
		defer ledger.Close()
		opts = append(opts, release.WithRecorder(ledger))
	}

	// The args were validated, and a usage printout is no longer helpful
	// if the release itself fails.
	cmd.SilenceUsage = true

	receipt, err := release.NewRunner(plan, eng, opts...).Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Verify {
		if err := registry.VerifyPushed(ctx, receipt.Refs, cfg); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		logger.Info("remote tags verified", "refs", receipt.Refs)
	}

	return nil
}
