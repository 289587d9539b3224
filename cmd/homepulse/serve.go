package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
	"github.com/user/homepulse/internal/web"
)

var (
	servePort   int
	detach      bool
	withMonitor bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the homepulse API server",
	Long: `Start the homepulse API server.

By default the server runs in the foreground. Use --detach to run it
in the background; use "homepulse stop" to stop it again.

Examples:
  homepulse serve
  homepulse serve --port 3001 --with-monitor
  homepulse serve --detach`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"API server port (default from config)")
	serveCmd.Flags().BoolVarP(&detach, "detach", "d", false,
		"Run the server in the background")
	serveCmd.Flags().BoolVar(&withMonitor, "with-monitor", false,
		"Also run the background liveness monitor loop")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Check if already running
	running, pid := checkRunning(cfg.DataDir)
	if running {
		fmt.Printf("Server is already running (PID %d)\n", pid)
		return nil
	}

	if detach {
		return runDetached()
	}

	return runForeground()
}

func runForeground() error {
	port := servePort
	if port == 0 {
		port = cfg.HTTPPort
	}
	if withMonitor {
		cfg.MonitorEnabled = true
	}

	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := writePidFile(cfg.DataDir); err != nil {
		util.Warn("Failed to write pid file: %v", err)
	}
	defer removePidFile(cfg.DataDir)

	fmt.Printf("HomePulse API: http://localhost:%d/api\n", port)
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(db, cfg, port)
	return srv.Start()
}

func runDetached() error {
	// Re-execute self in the foreground, detached from this terminal
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"serve"}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if servePort != 0 {
		args = append(args, "--port", fmt.Sprintf("%d", servePort))
	}
	if withMonitor {
		args = append(args, "--with-monitor")
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	procAttr := &os.ProcAttr{
		Dir:   "/",
		Env:   os.Environ(),
		Files: []*os.File{nil, logFile, logFile},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	proc, err := os.StartProcess(executable, append([]string{executable}, args...), procAttr)
	if err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start server process: %w", err)
	}

	if err := proc.Release(); err != nil {
		util.Warn("Failed to release process: %v", err)
	}

	port := servePort
	if port == 0 {
		port = cfg.HTTPPort
	}

	fmt.Printf("HomePulse server started (PID %d)\n", proc.Pid)
	fmt.Printf("API: http://localhost:%d/api\n", port)
	fmt.Printf("Logs: %s\n", cfg.LogFile)

	return nil
}
