package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/pintaildata/pintail/internal/app"
	"github.com/pintaildata/pintail/internal/config"
	"github.com/pintaildata/pintail/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	backendURL            string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "pintail",
	Short: "Terminal client for the pintail data workspace",
	Long: `Pintail is a terminal client for a local data-workspace backend. It keeps
multiple conversations with the workspace agent open in tabs, streams agent
runs live, and restores your tab layout across restarts.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.Flags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
}

func initLogging() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("pintail %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("pintail %s\n", version)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if backendURL != "" {
		cfg.SetBackendURL(backendURL)
	}

	if err := logger.Init(logger.DefaultLogPath); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	defer logger.Close()

	m := app.New(cfg, version)
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
