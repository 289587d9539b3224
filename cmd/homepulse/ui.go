package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long: `Launch an interactive terminal dashboard showing live service status.

The dashboard shows:
- Up/down counts and alert settings
- Per-service liveness state
- Recent alert history

Press 'r' to refresh, 'q' to quit.`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	// Initialize database
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app := tui.NewApp(db, cfg)
	return app.Run()
}
