package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
)

// WebhookPayload is the JSON body posted to the configured webhook URL.
type WebhookPayload struct {
	Type                string `json:"type"`
	EventID             string `json:"event_id"`
	ServiceName         string `json:"service_name"`
	ServiceIP           string `json:"service_ip"`
	ServicePort         int    `json:"service_port"`
	ServiceURL          string `json:"service_url"`
	DownDurationSeconds int64  `json:"down_duration_seconds,omitempty"`
	Timestamp           string `json:"timestamp"`
	Message             string `json:"message"`
}

// DeliveryOutcome captures the result of one webhook dispatch attempt.
type DeliveryOutcome struct {
	Sent   bool
	Detail string
}

// Notifier dispatches webhook notifications and records every fired alert
// decision in the history log, delivered or not.
type Notifier struct {
	history *storage.AlertStorage
	client  *http.Client
}

// NewNotifier creates a notifier with a bounded webhook timeout.
func NewNotifier(history *storage.AlertStorage, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		history: history,
		client:  &http.Client{Timeout: timeout},
	}
}

// Dispatch sends the webhook for a fired decision (when applicable) and
// appends the history entry. Delivery failures are recorded, never
// returned; only the history write itself can fail.
func (n *Notifier) Dispatch(decision Decision, svc model.ServiceDescriptor, now time.Time) (*model.AlertHistoryEntry, error) {
	payload := n.buildPayload(decision, svc, now)

	outcome := DeliveryOutcome{Detail: "webhook not sent"}
	if decision.SendWebhook {
		outcome = n.send(decision.WebhookURL, payload)
		if !outcome.Sent {
			util.Warn("webhook delivery failed for service %q: %s", svc.Name, outcome.Detail)
		}
	}

	entry := &model.AlertHistoryEntry{
		EventID:         payload.EventID,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		ServiceIP:       svc.IP,
		ServicePort:     svc.Port,
		AlertType:       decision.AlertType,
		Message:         payload.Message,
		WebhookSent:     outcome.Sent,
		WebhookResponse: outcome.Detail,
		CreatedAt:       now,
	}
	if err := n.history.AppendHistory(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// SendTest posts a canned down-alert payload to the given URL.
func (n *Notifier) SendTest(webhookURL string) DeliveryOutcome {
	payload := WebhookPayload{
		Type:        model.AlertTypeDown,
		EventID:     uuid.NewString(),
		ServiceName: "Test Service",
		ServiceIP:   "192.168.1.100",
		ServicePort: 80,
		Timestamp:   time.Now().Format(time.RFC3339),
		Message:     "This is a test alert from homepulse",
	}
	return n.send(webhookURL, payload)
}

func (n *Notifier) buildPayload(decision Decision, svc model.ServiceDescriptor, now time.Time) WebhookPayload {
	payload := WebhookPayload{
		Type:        decision.AlertType,
		EventID:     uuid.NewString(),
		ServiceName: svc.Name,
		ServiceIP:   svc.IP,
		ServicePort: svc.Port,
		ServiceURL:  svc.URL,
		Timestamp:   now.Format(time.RFC3339),
	}

	if decision.AlertType == model.AlertTypeDown {
		payload.DownDurationSeconds = int64(decision.DownDuration.Seconds())
		payload.Message = fmt.Sprintf("Service %q has been down for %d minutes",
			svc.Name, int(decision.DownDuration.Minutes()))
	} else {
		payload.Message = fmt.Sprintf("Service %q is back online", svc.Name)
	}
	return payload
}

func (n *Notifier) send(webhookURL string, payload WebhookPayload) DeliveryOutcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryOutcome{Detail: fmt.Sprintf("marshal error: %v", err)}
	}

	resp, err := n.client.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return DeliveryOutcome{Detail: fmt.Sprintf("request error: %v", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return DeliveryOutcome{Detail: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return DeliveryOutcome{Sent: true, Detail: fmt.Sprintf("status %d", resp.StatusCode)}
}
