package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "homepulse.pid")
}

// checkRunning checks if a homepulse server is already running.
func checkRunning(dataDir string) (bool, int) {
	data, err := os.ReadFile(pidFilePath(dataDir))
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// Send signal 0 to check if process is running
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0
	}

	return true, pid
}

func writePidFile(dataDir string) error {
	return os.WriteFile(pidFilePath(dataDir), []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePidFile(dataDir string) {
	os.Remove(pidFilePath(dataDir))
}

// sendStop sends SIGTERM to the running server.
func sendStop(dataDir string) error {
	running, pid := checkRunning(dataDir)
	if !running {
		return fmt.Errorf("server is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	return nil
}
