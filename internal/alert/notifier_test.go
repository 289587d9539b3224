package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
)

// webhookRecorder is a test webhook endpoint that captures payloads.
type webhookRecorder struct {
	mu       sync.Mutex
	payloads []WebhookPayload
	status   int
}

func (r *webhookRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var p WebhookPayload
	json.NewDecoder(req.Body).Decode(&p)

	r.mu.Lock()
	r.payloads = append(r.payloads, p)
	r.mu.Unlock()

	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (r *webhookRecorder) received() []WebhookPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]WebhookPayload(nil), r.payloads...)
}

func TestDispatchDownAlert(t *testing.T) {
	db := newTestDB(t)
	alerts := storage.NewAlertStorage(db)
	notifier := NewNotifier(alerts, time.Second)

	recorder := &webhookRecorder{}
	srv := httptest.NewServer(recorder)
	defer srv.Close()

	svc := model.ServiceDescriptor{ID: 1, Name: "plex", IP: "192.168.1.10", Port: 32400}
	decision := Decision{
		Fire:         true,
		AlertType:    model.AlertTypeDown,
		SendWebhook:  true,
		WebhookURL:   srv.URL,
		DownDuration: 6 * time.Minute,
	}

	entry, err := notifier.Dispatch(decision, svc, time.Now())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !entry.WebhookSent {
		t.Errorf("webhook_sent = false, want true (%s)", entry.WebhookResponse)
	}

	payloads := recorder.received()
	if len(payloads) != 1 {
		t.Fatalf("got %d webhook calls, want 1", len(payloads))
	}
	p := payloads[0]
	if p.Type != model.AlertTypeDown {
		t.Errorf("payload type = %q, want %q", p.Type, model.AlertTypeDown)
	}
	if p.EventID == "" {
		t.Error("payload event_id is empty")
	}
	if p.ServiceName != "plex" || p.ServiceIP != "192.168.1.10" || p.ServicePort != 32400 {
		t.Errorf("payload service fields = %q %q %d", p.ServiceName, p.ServiceIP, p.ServicePort)
	}
	if p.DownDurationSeconds != 360 {
		t.Errorf("down_duration_seconds = %d, want 360", p.DownDurationSeconds)
	}

	history, err := alerts.GetHistory(10)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
	if history[0].AlertType != model.AlertTypeDown || !history[0].WebhookSent {
		t.Errorf("history entry = %+v", history[0])
	}
}

func TestDispatchRecordsDeliveryFailure(t *testing.T) {
	db := newTestDB(t)
	alerts := storage.NewAlertStorage(db)
	notifier := NewNotifier(alerts, time.Second)

	recorder := &webhookRecorder{status: http.StatusInternalServerError}
	srv := httptest.NewServer(recorder)
	defer srv.Close()

	svc := model.ServiceDescriptor{ID: 1, Name: "plex"}
	decision := Decision{
		Fire:        true,
		AlertType:   model.AlertTypeDown,
		SendWebhook: true,
		WebhookURL:  srv.URL,
	}

	entry, err := notifier.Dispatch(decision, svc, time.Now())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if entry.WebhookSent {
		t.Error("webhook_sent = true for a 500 response")
	}
	if entry.WebhookResponse != "status 500" {
		t.Errorf("webhook_response = %q, want %q", entry.WebhookResponse, "status 500")
	}

	// The failure is still in history.
	history, _ := alerts.GetHistory(10)
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
}

func TestDispatchWithoutWebhook(t *testing.T) {
	db := newTestDB(t)
	alerts := storage.NewAlertStorage(db)
	notifier := NewNotifier(alerts, time.Second)

	svc := model.ServiceDescriptor{ID: 1, Name: "plex"}
	decision := Decision{
		Fire:      true,
		AlertType: model.AlertTypeRecovered,
	}

	entry, err := notifier.Dispatch(decision, svc, time.Now())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if entry.WebhookSent {
		t.Error("webhook_sent = true, want false")
	}
	if entry.AlertType != model.AlertTypeRecovered {
		t.Errorf("alert type = %q, want %q", entry.AlertType, model.AlertTypeRecovered)
	}
}

func TestSendTest(t *testing.T) {
	db := newTestDB(t)
	notifier := NewNotifier(storage.NewAlertStorage(db), time.Second)

	recorder := &webhookRecorder{}
	srv := httptest.NewServer(recorder)
	defer srv.Close()

	outcome := notifier.SendTest(srv.URL)
	if !outcome.Sent {
		t.Fatalf("test webhook not sent: %s", outcome.Detail)
	}

	payloads := recorder.received()
	if len(payloads) != 1 {
		t.Fatalf("got %d webhook calls, want 1", len(payloads))
	}
	if payloads[0].Type != model.AlertTypeDown {
		t.Errorf("payload type = %q, want %q", payloads[0].Type, model.AlertTypeDown)
	}

	srv.Close()
	outcome = notifier.SendTest(srv.URL)
	if outcome.Sent {
		t.Error("test webhook reported sent against a closed server")
	}
}
