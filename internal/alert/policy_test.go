package alert

import (
	"testing"
	"time"

	"github.com/user/homepulse/internal/model"
)

func testSettings() *model.AlertSettings {
	return &model.AlertSettings{
		Enabled:              true,
		WebhookURL:           "https://hooks.example.com/alert",
		WebhookEnabled:       true,
		DownThresholdMinutes: 5,
	}
}

func downObs(duration time.Duration, lastSent *time.Time) Observation {
	return Observation{
		ServiceID:    1,
		Transition:   TransitionNoChangeDown,
		DownDuration: duration,
		State: &model.LivenessState{
			ServiceID:     1,
			Status:        model.StatusDown,
			LastAlertSent: lastSent,
		},
	}
}

func TestEvaluateThreshold(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()

	tests := []struct {
		name     string
		duration time.Duration
		wantFire bool
	}{
		{"below-threshold", 2 * time.Minute, false},
		{"just-below", 5*time.Minute - time.Second, false},
		{"at-threshold", 5 * time.Minute, true},
		{"above-threshold", time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := engine.Evaluate(downObs(tt.duration, nil), svc, testSettings(), nil, now)
			if d.Fire != tt.wantFire {
				t.Fatalf("duration %v: fire = %t, want %t", tt.duration, d.Fire, tt.wantFire)
			}
			if tt.wantFire {
				if d.AlertType != model.AlertTypeDown {
					t.Errorf("alert type = %q, want %q", d.AlertType, model.AlertTypeDown)
				}
				if !d.SendWebhook {
					t.Error("webhook enabled but SendWebhook = false")
				}
			}
		})
	}
}

func TestEvaluateCooldown(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()

	recent := now.Add(-10 * time.Minute)
	d := engine.Evaluate(downObs(time.Hour, &recent), svc, testSettings(), nil, now)
	if d.Fire {
		t.Error("alert fired within cooldown")
	}

	stale := now.Add(-31 * time.Minute)
	d = engine.Evaluate(downObs(time.Hour, &stale), svc, testSettings(), nil, now)
	if !d.Fire {
		t.Error("alert did not fire after cooldown expired")
	}
}

func TestEvaluateRecovery(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()
	sentAt := now.Add(-time.Hour)

	recovered := func(prev *time.Time) Observation {
		return Observation{
			ServiceID:     1,
			Transition:    TransitionRecovered,
			PrevAlertSent: prev,
			State:         &model.LivenessState{ServiceID: 1, Status: model.StatusUp},
		}
	}

	// Outage was notified: recovery fires and is sent.
	d := engine.Evaluate(recovered(&sentAt), svc, testSettings(), nil, now)
	if !d.Fire {
		t.Fatal("notified recovery did not fire")
	}
	if d.AlertType != model.AlertTypeRecovered {
		t.Errorf("alert type = %q, want %q", d.AlertType, model.AlertTypeRecovered)
	}
	if !d.SendWebhook {
		t.Error("notified recovery: SendWebhook = false")
	}

	// Outage was never notified: recorded, but no webhook.
	d = engine.Evaluate(recovered(nil), svc, testSettings(), nil, now)
	if !d.Fire {
		t.Fatal("silent recovery did not fire")
	}
	if d.SendWebhook {
		t.Error("silent recovery: SendWebhook = true, want false")
	}

	// Webhook disabled globally: still recorded.
	settings := testSettings()
	settings.WebhookEnabled = false
	d = engine.Evaluate(recovered(&sentAt), svc, settings, nil, now)
	if !d.Fire || d.SendWebhook {
		t.Errorf("webhook disabled: fire = %t sendWebhook = %t, want true/false", d.Fire, d.SendWebhook)
	}
}

func TestEvaluateUpTransitionsNoOp(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()

	for _, tr := range []Transition{TransitionUnknown, TransitionFirstUp, TransitionNoChangeUp} {
		d := engine.Evaluate(Observation{ServiceID: 1, Transition: tr}, svc, testSettings(), nil, now)
		if d.Fire {
			t.Errorf("transition %s fired an alert", tr)
		}
	}
}

func TestEvaluatePause(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()

	settings := testSettings()
	future := now.Add(time.Hour)
	settings.PausedUntil = &future
	if d := engine.Evaluate(downObs(time.Hour, nil), svc, settings, nil, now); d.Fire {
		t.Error("alert fired while globally paused")
	}

	past := now.Add(-time.Hour)
	settings.PausedUntil = &past
	if d := engine.Evaluate(downObs(time.Hour, nil), svc, settings, nil, now); !d.Fire {
		t.Error("expired pause still suppressed the alert")
	}

	override := &model.ServiceAlertConfig{ServiceID: 1, Paused: boolPtr(true)}
	if d := engine.Evaluate(downObs(time.Hour, nil), svc, testSettings(), override, now); d.Fire {
		t.Error("alert fired for service-paused override")
	}
}

func TestEvaluateLayeredPrecedence(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	now := time.Now()

	// Override enabled beats the inline descriptor flag.
	svc := model.ServiceDescriptor{ID: 1, Name: "svc", AlertEnabled: boolPtr(true)}
	override := &model.ServiceAlertConfig{ServiceID: 1, Enabled: boolPtr(false)}
	if d := engine.Evaluate(downObs(time.Hour, nil), svc, testSettings(), override, now); d.Fire {
		t.Error("disabled override still fired")
	}

	// Global disable wins over everything.
	settings := testSettings()
	settings.Enabled = false
	if d := engine.Evaluate(downObs(time.Hour, nil), svc, settings, nil, now); d.Fire {
		t.Error("globally disabled alerting still fired")
	}

	// Override threshold beats descriptor and global thresholds.
	svc = model.ServiceDescriptor{ID: 1, Name: "svc", DownThresholdMinutes: intPtr(60)}
	override = &model.ServiceAlertConfig{ServiceID: 1, DownThresholdMinutes: intPtr(0)}
	d := engine.Evaluate(downObs(time.Second, nil), svc, testSettings(), override, now)
	if !d.Fire {
		t.Error("zero-threshold override did not fire immediately")
	}

	// Descriptor threshold beats the global threshold.
	svc = model.ServiceDescriptor{ID: 1, Name: "svc", DownThresholdMinutes: intPtr(1)}
	d = engine.Evaluate(downObs(2*time.Minute, nil), svc, testSettings(), nil, now)
	if !d.Fire {
		t.Error("descriptor threshold of 1m did not fire at 2m")
	}

	// Override webhook URL beats the global URL.
	override = &model.ServiceAlertConfig{ServiceID: 1, WebhookURL: strPtr("https://other.example.com/hook")}
	d = engine.Evaluate(downObs(time.Hour, nil), svc, testSettings(), override, now)
	if d.WebhookURL != "https://other.example.com/hook" {
		t.Errorf("webhook URL = %q, want override URL", d.WebhookURL)
	}
}

func TestEvaluateDuplicateObservationNoDoubleFire(t *testing.T) {
	engine := NewEngine(30*time.Minute, 5*time.Minute)
	svc := model.ServiceDescriptor{ID: 1, Name: "svc"}
	now := time.Now()

	// First evaluation fires.
	d := engine.Evaluate(downObs(10*time.Minute, nil), svc, testSettings(), nil, now)
	if !d.Fire {
		t.Fatal("first evaluation did not fire")
	}

	// Same outage re-observed right after the alert was stamped.
	d = engine.Evaluate(downObs(10*time.Minute+time.Second, &now), svc, testSettings(), nil, now.Add(time.Second))
	if d.Fire {
		t.Error("duplicate observation fired a second alert within cooldown")
	}
}
