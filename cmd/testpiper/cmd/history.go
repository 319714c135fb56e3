package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nandakiran-r/TestPiper/artifacts"
	"github.com/nandakiran-r/TestPiper/internal/history"
	"github.com/nandakiran-r/TestPiper/internal/runtime"
	"github.com/nandakiran-r/TestPiper/internal/viper"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show releases recorded in the local ledger, newest first",
		Args:  cobra.NoArgs,
		RunE:  historyRunE,
	}
}

func historyRunE(cmd *cobra.Command, args []string) error {
	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	artifactsWriter, err := artifacts.NewFilesystemWriter(artifacts.WithDirectory(cfg.Artifacts))
	if err != nil {
		return err
	}

	ledgerPath := filepath.Join(artifactsWriter.Path(), history.DefaultFilename)
	if _, err := os.Stat(ledgerPath); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "no releases recorded")
		return nil
	}

	ledger, err := history.Open(ledgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	entries, err := ledger.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no releases recorded")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			e.CreatedAt.Format(time.RFC3339),
			shortImageID(e.ImageID),
			strings.Join(e.Refs, " "),
		)
	}

	return nil
}

// shortImageID trims an image ID like sha256:abcd... down to the
// familiar 12 character form.
func shortImageID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
