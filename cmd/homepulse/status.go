package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long:  "Show the current status of the homepulse server, monitored services and alerting.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	runningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	stoppedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	// Check server status
	running, pid := checkRunning(cfg.DataDir)

	fmt.Println(titleStyle.Render("HomePulse Status"))
	fmt.Println()

	fmt.Print(labelStyle.Render("Server: "))
	if running {
		fmt.Println(runningStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(stoppedStyle.Render("Stopped"))
	}

	// Database stats
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return nil
	}

	fmt.Println()
	fmt.Println(titleStyle.Render("Services"))

	dashboards := storage.NewDashboardStorage(db)
	if services, err := dashboards.ListServices(); err == nil {
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Configured:"),
			valueStyle.Render(fmt.Sprintf("%d", len(services))))
	}

	liveness := storage.NewLivenessStorage(db)
	if count, err := liveness.CountByStatus(model.StatusUp); err == nil {
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Up:"),
			valueStyle.Render(fmt.Sprintf("%d", count)))
	}
	if count, err := liveness.CountByStatus(model.StatusDown); err == nil {
		style := valueStyle
		if count > 0 {
			style = stoppedStyle
		}
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Down:"),
			style.Render(fmt.Sprintf("%d", count)))
	}

	alerts := storage.NewAlertStorage(db)
	if settings, err := alerts.GetSettings(); err == nil {
		fmt.Println()
		fmt.Println(titleStyle.Render("Alerting"))

		enabled := "disabled"
		if settings.Enabled {
			enabled = "enabled"
		}
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Alerts:"),
			valueStyle.Render(enabled))
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Threshold:"),
			valueStyle.Render(fmt.Sprintf("%d minutes", settings.DownThresholdMinutes)))

		webhook := "off"
		if settings.WebhookEnabled && settings.WebhookURL != "" {
			webhook = "on"
		}
		fmt.Printf("  %s %s\n",
			labelStyle.Render("Webhook:"),
			valueStyle.Render(webhook))

		if count, err := alerts.CountHistory(); err == nil {
			fmt.Printf("  %s %s\n",
				labelStyle.Render("History:"),
				valueStyle.Render(fmt.Sprintf("%d entries", count)))
		}
	}

	return nil
}
