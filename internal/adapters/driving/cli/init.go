package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Configure the directory tree to index",
	Long: `Stores the directory to index in the configuration file and prepares
the local database. Run this once before 'pdfdex index' or 'pdfdex watch'.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := loadConfig(); err != nil {
		return err
	}
	if err := configStore.SetRootDir(dir); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	appConfig = configStore.Config()

	// Open the store once so migrations run now rather than on the
	// first index.
	if err := ensureServices(); err != nil {
		return err
	}

	cmd.Printf("Watching root set to %s\n", dir)
	cmd.Printf("Configuration: %s\n", configStore.Path())
	cmd.Printf("Database:      %s\n", appConfig.DataDir)
	cmd.Println("Run 'pdfdex index' to build the index.")
	return nil
}
