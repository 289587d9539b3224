package alert

import (
	"time"

	"github.com/user/homepulse/internal/model"
)

// Decision is the outcome of evaluating one observation against the
// alerting rules.
type Decision struct {
	// Fire means an alert event happened and must be recorded in history.
	Fire bool

	// AlertType is model.AlertTypeDown or model.AlertTypeRecovered.
	AlertType string

	// SendWebhook means the event should also be dispatched to WebhookURL.
	// History is recorded either way.
	SendWebhook bool

	// WebhookURL is the effective webhook target (override or global).
	WebhookURL string

	// DownDuration is the outage length for down alerts.
	DownDuration time.Duration
}

// Engine decides whether an observation fires an alert, applying layered
// enable/pause flags, the down-duration threshold and the cooldown.
type Engine struct {
	cooldown         time.Duration
	defaultThreshold time.Duration
}

// NewEngine creates a policy engine with the given repeat-alert cooldown
// and the down-duration threshold used when no layer configures one.
func NewEngine(cooldown, defaultThreshold time.Duration) *Engine {
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	if defaultThreshold <= 0 {
		defaultThreshold = 5 * time.Minute
	}
	return &Engine{cooldown: cooldown, defaultThreshold: defaultThreshold}
}

// Evaluate applies the firing rules to one observation. Per-service
// override values win over inline descriptor fields, which win over the
// global settings.
func (e *Engine) Evaluate(obs Observation, svc model.ServiceDescriptor,
	settings *model.AlertSettings, override *model.ServiceAlertConfig, now time.Time) Decision {

	switch obs.Transition {
	case TransitionUnknown, TransitionNoChangeUp, TransitionFirstUp:
		return Decision{}
	}

	if !e.effectiveEnabled(svc, settings, override, now) {
		return Decision{}
	}

	webhookURL := effectiveWebhookURL(settings, override)
	webhookUsable := settings.WebhookEnabled && webhookURL != ""

	if obs.Transition == TransitionRecovered {
		// A recovery is always recorded, but only notified when the outage
		// itself was notified. Never announce recovery of an outage nobody
		// heard about.
		return Decision{
			Fire:        true,
			AlertType:   model.AlertTypeRecovered,
			SendWebhook: obs.PrevAlertSent != nil && webhookUsable,
			WebhookURL:  webhookURL,
		}
	}

	// Down transitions: gate on duration threshold, then cooldown within
	// the current episode.
	threshold := e.effectiveThreshold(svc, settings, override)
	if obs.DownDuration < threshold {
		return Decision{}
	}

	var lastSent *time.Time
	if obs.State != nil {
		lastSent = obs.State.LastAlertSent
	}
	if lastSent != nil && now.Sub(*lastSent) < e.cooldown {
		return Decision{}
	}

	return Decision{
		Fire:         true,
		AlertType:    model.AlertTypeDown,
		SendWebhook:  webhookUsable,
		WebhookURL:   webhookURL,
		DownDuration: obs.DownDuration,
	}
}

func (e *Engine) effectiveEnabled(svc model.ServiceDescriptor,
	settings *model.AlertSettings, override *model.ServiceAlertConfig, now time.Time) bool {

	if !settings.Enabled || settings.Paused(now) {
		return false
	}

	enabled := true
	if svc.AlertEnabled != nil {
		enabled = *svc.AlertEnabled
	}
	if override != nil && override.Enabled != nil {
		enabled = *override.Enabled
	}
	if !enabled {
		return false
	}

	if override != nil && override.Paused != nil && *override.Paused {
		return false
	}
	return true
}

func (e *Engine) effectiveThreshold(svc model.ServiceDescriptor,
	settings *model.AlertSettings, override *model.ServiceAlertConfig) time.Duration {

	threshold := e.defaultThreshold
	if settings.DownThresholdMinutes > 0 {
		threshold = time.Duration(settings.DownThresholdMinutes) * time.Minute
	}
	if svc.DownThresholdMinutes != nil {
		threshold = time.Duration(*svc.DownThresholdMinutes) * time.Minute
	}
	if override != nil && override.DownThresholdMinutes != nil {
		threshold = time.Duration(*override.DownThresholdMinutes) * time.Minute
	}
	if threshold < 0 {
		threshold = 0
	}
	return threshold
}

func effectiveWebhookURL(settings *model.AlertSettings, override *model.ServiceAlertConfig) string {
	if override != nil && override.WebhookURL != nil && *override.WebhookURL != "" {
		return *override.WebhookURL
	}
	return settings.WebhookURL
}
