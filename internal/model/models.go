// Package model defines core data structures for homepulse.
package model

import (
	"encoding/json"
	"time"
)

// DashboardConfig holds the global display settings for the dashboard.
type DashboardConfig struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	TabTitle      string `json:"tab_title"`
	FaviconURL    string `json:"favicon_url"`
	BackgroundURL string `json:"background_url"`
	Mode          string `json:"mode"`
	ShowDetails   bool   `json:"show_details"`
	FontFamily    string `json:"font_family"`
	FontSize      string `json:"font_size"`
	IconSize      string `json:"icon_size"`
}

// Page is a top-level dashboard page.
type Page struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"display_order"`
}

// Group is a titled group of service links on a page.
type Group struct {
	ID           int64  `json:"id"`
	PageID       int64  `json:"page_id"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"display_order"`
}

// Service is a configured service link, optionally probeable via ip:port.
type Service struct {
	ID           int64  `json:"id"`
	GroupID      int64  `json:"group_id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	IconURL      string `json:"icon_url"`
	IP           string `json:"ip"`
	Port         int    `json:"port"`
	DisplayOrder int    `json:"display_order"`
}

// BarIcon is a quick-link icon in the dashboard top bar.
type BarIcon struct {
	ID           int64  `json:"id"`
	Alt          string `json:"alt"`
	Link         string `json:"link"`
	IconURL      string `json:"iconUrl"`
	DisplayOrder int    `json:"display_order"`
}

// Widget is a configurable dashboard widget (weather, clock, ...).
type Widget struct {
	ID           int64           `json:"id"`
	PageID       int64           `json:"page_id"`
	Type         string          `json:"type"`
	Title        string          `json:"title"`
	Config       json.RawMessage `json:"config"`
	DisplayOrder int             `json:"display_order"`
	Enabled      bool            `json:"enabled"`
}

// ServiceDescriptor is the per-poll probing input for one service.
// Inline alert fields are a fallback for callers that do not maintain
// a stored per-service alert config.
type ServiceDescriptor struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	URL                  string `json:"url"`
	IP                   string `json:"ip"`
	Port                 int    `json:"port"`
	AlertEnabled         *bool  `json:"alert_enabled,omitempty"`
	DownThresholdMinutes *int   `json:"down_threshold_minutes,omitempty"`
}

// Addressable reports whether the service has enough address to probe.
func (s ServiceDescriptor) Addressable() bool {
	return s.IP != "" && s.Port > 0
}

// ProbeResult is the outcome of one TCP reachability check.
// Reachable is nil when the service had no address to probe.
type ProbeResult struct {
	ServiceID int64
	Reachable *bool
}

// Service liveness statuses.
const (
	StatusUnknown = "unknown"
	StatusUp      = "up"
	StatusDown    = "down"
)

// LivenessState is the persisted up/down state for one service.
// DownSince is set at the start of an outage and cleared on recovery;
// LastAlertSent is scoped to the current outage and cleared on recovery.
type LivenessState struct {
	ServiceID     int64      `json:"service_id"`
	Status        string     `json:"status"`
	DownSince     *time.Time `json:"down_since"`
	LastChecked   time.Time  `json:"last_checked"`
	LastAlertSent *time.Time `json:"last_alert_sent"`
}

// AlertSettings is the global alerting configuration singleton.
type AlertSettings struct {
	ID                   int64      `json:"id"`
	Enabled              bool       `json:"enabled"`
	WebhookURL           string     `json:"webhook_url"`
	WebhookEnabled       bool       `json:"webhook_enabled"`
	DownThresholdMinutes int        `json:"down_threshold_minutes"`
	PausedUntil          *time.Time `json:"paused_until"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Paused reports whether alerts are globally paused at the given time.
func (s AlertSettings) Paused(now time.Time) bool {
	return s.PausedUntil != nil && now.Before(*s.PausedUntil)
}

// ServiceAlertConfig is an optional per-service alert override.
// Nil fields fall back to the global AlertSettings values.
type ServiceAlertConfig struct {
	ServiceID            int64   `json:"service_id"`
	Enabled              *bool   `json:"enabled"`
	Paused               *bool   `json:"paused"`
	DownThresholdMinutes *int    `json:"down_threshold_minutes"`
	WebhookURL           *string `json:"webhook_url"`
}

// Alert types recorded in history and sent in webhook payloads.
const (
	AlertTypeDown      = "service_down"
	AlertTypeRecovered = "service_recovered"
)

// AlertHistoryEntry is one immutable alert audit record.
type AlertHistoryEntry struct {
	ID              int64     `json:"id"`
	EventID         string    `json:"event_id"`
	ServiceID       int64     `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	ServiceIP       string    `json:"service_ip"`
	ServicePort     int       `json:"service_port"`
	AlertType       string    `json:"alert_type"`
	Message         string    `json:"message"`
	WebhookSent     bool      `json:"webhook_sent"`
	WebhookResponse string    `json:"webhook_response"`
	CreatedAt       time.Time `json:"created_at"`
}
