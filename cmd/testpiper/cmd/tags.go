package cmd

import (
	"fmt"

	"github.com/nandakiran-r/TestPiper/internal/registry"
	"github.com/nandakiran-r/TestPiper/internal/runtime"
	"github.com/nandakiran-r/TestPiper/internal/viper"

	"github.com/spf13/cobra"
)

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tags <repository>",
		Short:   "List the tags published to a repository",
		Example: "  testpiper tags alice/piper-tts",
		Args:    cobra.ExactArgs(1),
		RunE:    tagsRunE,
	}
}

func tagsRunE(cmd *cobra.Command, args []string) error {
	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	tags, err := registry.ListTags(cmd.Context(), args[0], cfg)
	if err != nil {
		return fmt.Errorf("could not list tags for %s: %w", args[0], err)
	}

	for _, tag := range tags {
		fmt.Fprintln(cmd.OutOrStdout(), tag)
	}

	return nil
}
