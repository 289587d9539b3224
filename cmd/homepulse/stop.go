package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the homepulse server",
	Long:  "Stop a homepulse server started with --detach gracefully.",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	running, pid := checkRunning(cfg.DataDir)
	if !running {
		fmt.Println("Server is not running")
		return nil
	}

	fmt.Printf("Stopping server (PID %d)...\n", pid)

	if err := sendStop(cfg.DataDir); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Wait for the server to stop
	for i := 0; i < 30; i++ {
		time.Sleep(time.Second)
		running, _ := checkRunning(cfg.DataDir)
		if !running {
			fmt.Println("Server stopped")
			return nil
		}
	}

	fmt.Println("Warning: Server may not have stopped completely")
	return nil
}
