package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/user/homepulse/internal/model"
)

// LivenessStorage handles persisted per-service up/down state.
type LivenessStorage struct {
	db *DB
}

// NewLivenessStorage creates a new liveness storage handler.
func NewLivenessStorage(db *DB) *LivenessStorage {
	return &LivenessStorage{db: db}
}

// Get returns the liveness state for a service, or nil if never observed.
func (s *LivenessStorage) Get(serviceID int64) (*model.LivenessState, error) {
	query := `SELECT service_id, status, down_since, last_checked, last_alert_sent
			  FROM service_liveness WHERE service_id = ?`

	var state model.LivenessState
	err := s.db.QueryRow(query, serviceID).Scan(
		&state.ServiceID, &state.Status, &state.DownSince,
		&state.LastChecked, &state.LastAlertSent)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get liveness state: %w", err)
	}

	return &state, nil
}

// Upsert writes the full liveness state for a service in one atomic
// statement, so overlapping polls cannot interleave partial updates.
func (s *LivenessStorage) Upsert(state *model.LivenessState) error {
	query := `INSERT INTO service_liveness (service_id, status, down_since, last_checked, last_alert_sent)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT (service_id) DO UPDATE SET
				status = excluded.status,
				down_since = excluded.down_since,
				last_checked = excluded.last_checked,
				last_alert_sent = excluded.last_alert_sent`

	_, err := s.db.Exec(query,
		state.ServiceID, state.Status, state.DownSince,
		state.LastChecked, state.LastAlertSent)
	if err != nil {
		return fmt.Errorf("failed to upsert liveness state: %w", err)
	}
	return nil
}

// MarkAlertSent records the last-alert-sent timestamp for the current outage.
func (s *LivenessStorage) MarkAlertSent(serviceID int64, sentAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE service_liveness SET last_alert_sent = ? WHERE service_id = ?`,
		sentAt, serviceID)
	if err != nil {
		return fmt.Errorf("failed to mark alert sent: %w", err)
	}
	return nil
}

// List returns all known liveness states.
func (s *LivenessStorage) List() ([]model.LivenessState, error) {
	rows, err := s.db.Query(
		`SELECT service_id, status, down_since, last_checked, last_alert_sent
		 FROM service_liveness ORDER BY service_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query liveness states: %w", err)
	}
	defer rows.Close()

	var states []model.LivenessState
	for rows.Next() {
		var state model.LivenessState
		if err := rows.Scan(&state.ServiceID, &state.Status, &state.DownSince,
			&state.LastChecked, &state.LastAlertSent); err != nil {
			return nil, fmt.Errorf("failed to scan liveness state: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

// CountByStatus returns the number of services currently in the given status.
func (s *LivenessStorage) CountByStatus(status string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM service_liveness WHERE status = ?`, status).Scan(&count)
	return count, err
}
