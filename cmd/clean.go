package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pintaildata/pintail/internal/config"
	"github.com/pintaildata/pintail/internal/logger"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear the saved tab layout and log files",
	Long: `Removes the saved tab layout from the config file and deletes pintail's
log files. Conversations themselves live on the backend and are not touched.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	saved := len(cfg.GetSavedTabs())
	cfg.ClearTabLayout()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Printf("Warning: error clearing logs: %v\n", err)
	}

	fmt.Printf("Cleared %d saved tab(s).\n", saved)
	if logsCleared > 0 {
		fmt.Printf("Removed %d log file(s).\n", logsCleared)
	}
	return nil
}
