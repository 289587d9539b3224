package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/homepulse/internal/model"
)

// AlertStorage handles alert settings, per-service overrides and the
// append-only alert history.
type AlertStorage struct {
	db *DB
}

// NewAlertStorage creates a new alert storage handler.
func NewAlertStorage(db *DB) *AlertStorage {
	return &AlertStorage{db: db}
}

// GetSettings returns the global alert settings, or defaults when unset.
func (s *AlertStorage) GetSettings() (*model.AlertSettings, error) {
	query := `SELECT id, enabled, webhook_url, webhook_enabled, down_threshold_minutes,
			  paused_until, created_at, updated_at
			  FROM alert_settings ORDER BY id LIMIT 1`

	var settings model.AlertSettings
	err := s.db.QueryRow(query).Scan(
		&settings.ID, &settings.Enabled, &settings.WebhookURL, &settings.WebhookEnabled,
		&settings.DownThresholdMinutes, &settings.PausedUntil,
		&settings.CreatedAt, &settings.UpdatedAt)

	if err == sql.ErrNoRows {
		return &model.AlertSettings{Enabled: true, DownThresholdMinutes: 5}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert settings: %w", err)
	}

	return &settings, nil
}

// SaveSettings upserts the global alert settings singleton.
func (s *AlertStorage) SaveSettings(settings *model.AlertSettings) error {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM alert_settings ORDER BY id LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		result, err := s.db.Exec(
			`INSERT INTO alert_settings (enabled, webhook_url, webhook_enabled, down_threshold_minutes, paused_until)
			 VALUES (?, ?, ?, ?, ?)`,
			settings.Enabled, settings.WebhookURL, settings.WebhookEnabled,
			settings.DownThresholdMinutes, settings.PausedUntil)
		if err != nil {
			return fmt.Errorf("failed to insert alert settings: %w", err)
		}
		settings.ID, _ = result.LastInsertId()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check alert settings: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE alert_settings SET enabled = ?, webhook_url = ?, webhook_enabled = ?,
		 down_threshold_minutes = ?, paused_until = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		settings.Enabled, settings.WebhookURL, settings.WebhookEnabled,
		settings.DownThresholdMinutes, settings.PausedUntil, id)
	if err != nil {
		return fmt.Errorf("failed to update alert settings: %w", err)
	}
	settings.ID = id
	return nil
}

// GetServiceConfig returns the per-service override, or nil if none exists.
func (s *AlertStorage) GetServiceConfig(serviceID int64) (*model.ServiceAlertConfig, error) {
	query := `SELECT service_id, enabled, paused, down_threshold_minutes, webhook_url
			  FROM service_alert_configs WHERE service_id = ?`

	var cfg model.ServiceAlertConfig
	err := s.db.QueryRow(query, serviceID).Scan(
		&cfg.ServiceID, &cfg.Enabled, &cfg.Paused,
		&cfg.DownThresholdMinutes, &cfg.WebhookURL)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service alert config: %w", err)
	}

	return &cfg, nil
}

// SaveServiceConfig upserts a per-service alert override.
func (s *AlertStorage) SaveServiceConfig(cfg *model.ServiceAlertConfig) error {
	query := `INSERT INTO service_alert_configs (service_id, enabled, paused, down_threshold_minutes, webhook_url)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT (service_id) DO UPDATE SET
				enabled = excluded.enabled,
				paused = excluded.paused,
				down_threshold_minutes = excluded.down_threshold_minutes,
				webhook_url = excluded.webhook_url`

	_, err := s.db.Exec(query, cfg.ServiceID, cfg.Enabled, cfg.Paused,
		cfg.DownThresholdMinutes, cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("failed to save service alert config: %w", err)
	}
	return nil
}

// DeleteServiceConfig removes a per-service override; returns false if absent.
func (s *AlertStorage) DeleteServiceConfig(serviceID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM service_alert_configs WHERE service_id = ?`, serviceID)
	if err != nil {
		return false, fmt.Errorf("failed to delete service alert config: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// AppendHistory appends one immutable alert history entry.
func (s *AlertStorage) AppendHistory(entry *model.AlertHistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	result, err := s.db.Exec(
		`INSERT INTO alert_history
		 (event_id, service_id, service_name, service_ip, service_port, alert_type,
		  message, webhook_sent, webhook_response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID, entry.ServiceID, entry.ServiceName, entry.ServiceIP,
		entry.ServicePort, entry.AlertType, entry.Message,
		entry.WebhookSent, entry.WebhookResponse, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert alert history entry: %w", err)
	}
	entry.ID, _ = result.LastInsertId()
	return nil
}

// GetHistory returns the most recent alert history entries, newest first.
func (s *AlertStorage) GetHistory(limit int) ([]model.AlertHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, event_id, COALESCE(service_id, 0), service_name, COALESCE(service_ip, ''),
		 COALESCE(service_port, 0), alert_type, COALESCE(message, ''), webhook_sent,
		 COALESCE(webhook_response, ''), created_at
		 FROM alert_history ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	entries := []model.AlertHistoryEntry{}
	for rows.Next() {
		var e model.AlertHistoryEntry
		if err := rows.Scan(&e.ID, &e.EventID, &e.ServiceID, &e.ServiceName, &e.ServiceIP,
			&e.ServicePort, &e.AlertType, &e.Message, &e.WebhookSent,
			&e.WebhookResponse, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory deletes all alert history entries (administrative bulk clear).
func (s *AlertStorage) ClearHistory() error {
	if _, err := s.db.Exec(`DELETE FROM alert_history`); err != nil {
		return fmt.Errorf("failed to clear alert history: %w", err)
	}
	return nil
}

// CountHistory returns the total number of history entries.
func (s *AlertStorage) CountHistory() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM alert_history`).Scan(&count)
	return count, err
}
