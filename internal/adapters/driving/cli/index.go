package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index all PDF documents under the configured tree",
	Long: `Walks the configured directory tree, indexes every PDF document and
removes rows for files that no longer exist. Unchanged files are
recognised by content and skipped cheaply.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	cmd.Printf("Indexing %s...\n", appConfig.RootDir)
	stats, err := indexerService.IndexTree(cmd.Context())
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d documents", stats.Indexed)
	if stats.Failed > 0 {
		cmd.Printf(", %d failed", stats.Failed)
	}
	if stats.Swept > 0 {
		cmd.Printf(", %d removed", stats.Swept)
	}
	cmd.Println(".")
	return nil
}
