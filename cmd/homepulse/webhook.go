package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/homepulse/internal/alert"
	"github.com/user/homepulse/internal/storage"
)

var testWebhookCmd = &cobra.Command{
	Use:   "test-webhook [url]",
	Short: "Send a test alert to a webhook URL",
	Long: `Send a canned down-alert payload to a webhook URL.

Without an argument the configured webhook URL from the alert settings
is used.

Examples:
  homepulse test-webhook
  homepulse test-webhook https://hooks.example.com/alert`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTestWebhook,
}

func runTestWebhook(cmd *cobra.Command, args []string) error {
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	alerts := storage.NewAlertStorage(db)

	var url string
	if len(args) > 0 {
		url = args[0]
	} else {
		settings, err := alerts.GetSettings()
		if err != nil {
			return fmt.Errorf("failed to load alert settings: %w", err)
		}
		url = settings.WebhookURL
	}
	if url == "" {
		return fmt.Errorf("no webhook URL given and none configured")
	}

	fmt.Printf("Sending test alert to %s\n", url)

	notifier := alert.NewNotifier(alerts, cfg.WebhookTimeout)
	outcome := notifier.SendTest(url)
	if !outcome.Sent {
		return fmt.Errorf("webhook delivery failed: %s", outcome.Detail)
	}

	fmt.Printf("Test webhook delivered (%s)\n", outcome.Detail)
	return nil
}
