package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/user/homepulse/internal/model"
)

// Ping probes the posted services and runs the alert pipeline. The
// response maps "ip:port" (or bare service id for unaddressable entries)
// to reachability; null means the service was not probed.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Services []model.ServiceDescriptor `json:"services"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if req.Services == nil {
		writeMessage(w, http.StatusBadRequest, "services array is required")
		return
	}

	statuses := h.pipeline.Run(r.Context(), req.Services)
	writeJSON(w, statuses)
}

// TestWebhook sends a canned alert payload to the given webhook URL.
func (h *Handlers) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if req.WebhookURL == "" {
		writeMessage(w, http.StatusBadRequest, "Webhook URL is required")
		return
	}

	outcome := h.pipeline.Notifier().SendTest(req.WebhookURL)
	if !outcome.Sent {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": outcome.Detail})
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "message": "Test webhook sent successfully"})
}

// GetAlertSettings returns the global alert settings.
func (h *Handlers) GetAlertSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.alerts.GetSettings()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

// UpdateAlertSettings replaces the global alert settings.
func (h *Handlers) UpdateAlertSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.AlertSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if settings.DownThresholdMinutes < 0 {
		writeMessage(w, http.StatusBadRequest, "down_threshold_minutes must not be negative")
		return
	}
	if err := h.alerts.SaveSettings(&settings); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, settings)
}

// GetServiceAlertConfig returns the per-service override, if any.
func (h *Handlers) GetServiceAlertConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cfg, err := h.alerts.GetServiceConfig(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if cfg == nil {
		writeMessage(w, http.StatusNotFound, "No alert config for service")
		return
	}
	writeJSON(w, cfg)
}

// UpdateServiceAlertConfig upserts the per-service override.
func (h *Handlers) UpdateServiceAlertConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var cfg model.ServiceAlertConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	cfg.ServiceID = id
	if err := h.alerts.SaveServiceConfig(&cfg); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, cfg)
}

// DeleteServiceAlertConfig removes the per-service override.
func (h *Handlers) DeleteServiceAlertConfig(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	found, err := h.alerts.DeleteServiceConfig(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "No alert config for service")
		return
	}
	writeMessage(w, http.StatusOK, "Alert config deleted successfully")
}

// GetAlertHistory returns recent alert history entries, newest first.
func (h *Handlers) GetAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if ln, err := strconv.Atoi(l); err == nil && ln > 0 && ln <= 500 {
			limit = ln
		}
	}

	entries, err := h.alerts.GetHistory(limit)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

// ClearAlertHistory deletes all alert history entries.
func (h *Handlers) ClearAlertHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.alerts.ClearHistory(); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Alert history cleared successfully")
}
