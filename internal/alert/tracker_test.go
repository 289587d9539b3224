package alert

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func reachable(b bool) model.ProbeResult {
	return model.ProbeResult{ServiceID: 1, Reachable: &b}
}

func TestObserveTransitionSequence(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(storage.NewLivenessStorage(db))

	base := time.Now().Truncate(time.Second)
	steps := []struct {
		reachable bool
		at        time.Time
		want      Transition
	}{
		{true, base, TransitionFirstUp},
		{false, base.Add(1 * time.Minute), TransitionWentDown},
		{false, base.Add(2 * time.Minute), TransitionNoChangeDown},
		{false, base.Add(3 * time.Minute), TransitionNoChangeDown},
		{true, base.Add(4 * time.Minute), TransitionRecovered},
	}

	for i, step := range steps {
		obs, err := tracker.Observe(1, reachable(step.reachable), step.at)
		if err != nil {
			t.Fatalf("step %d: observe: %v", i, err)
		}
		if obs.Transition != step.want {
			t.Fatalf("step %d: got transition %s, want %s", i, obs.Transition, step.want)
		}
	}
}

func TestObserveDownEpisode(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(storage.NewLivenessStorage(db))

	base := time.Now().Truncate(time.Second)
	tracker.Observe(1, reachable(true), base)

	downAt := base.Add(time.Minute)
	obs, err := tracker.Observe(1, reachable(false), downAt)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.State.DownSince == nil || !obs.State.DownSince.Equal(downAt) {
		t.Fatalf("down_since = %v, want %v", obs.State.DownSince, downAt)
	}
	if obs.DownDuration != 0 {
		t.Errorf("went_down duration = %v, want 0", obs.DownDuration)
	}

	// Still down: down_since keeps the episode start, duration grows.
	obs, err = tracker.Observe(1, reachable(false), downAt.Add(7*time.Minute))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.Transition != TransitionNoChangeDown {
		t.Fatalf("got transition %s, want no_change_down", obs.Transition)
	}
	if !obs.State.DownSince.Equal(downAt) {
		t.Errorf("down_since = %v, want unchanged %v", obs.State.DownSince, downAt)
	}
	if obs.DownDuration != 7*time.Minute {
		t.Errorf("duration = %v, want 7m", obs.DownDuration)
	}
}

func TestObserveRecoveryClearsEpisode(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(storage.NewLivenessStorage(db))

	base := time.Now().Truncate(time.Second)
	tracker.Observe(1, reachable(false), base)

	sentAt := base.Add(5 * time.Minute)
	if err := tracker.MarkAlertSent(1, sentAt); err != nil {
		t.Fatalf("mark alert sent: %v", err)
	}

	obs, err := tracker.Observe(1, reachable(true), base.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.Transition != TransitionRecovered {
		t.Fatalf("got transition %s, want recovered", obs.Transition)
	}
	if obs.PrevAlertSent == nil || !obs.PrevAlertSent.Equal(sentAt) {
		t.Errorf("prev alert sent = %v, want %v", obs.PrevAlertSent, sentAt)
	}
	if obs.State.DownSince != nil {
		t.Errorf("down_since = %v, want cleared", obs.State.DownSince)
	}
	if obs.State.LastAlertSent != nil {
		t.Errorf("last_alert_sent = %v, want cleared", obs.State.LastAlertSent)
	}

	// A fresh outage starts a new episode with no cooldown carry-over.
	obs, err = tracker.Observe(1, reachable(false), base.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.Transition != TransitionWentDown {
		t.Fatalf("got transition %s, want went_down", obs.Transition)
	}
	if obs.State.LastAlertSent != nil {
		t.Errorf("new episode last_alert_sent = %v, want nil", obs.State.LastAlertSent)
	}
}

func TestObserveFirstDown(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(storage.NewLivenessStorage(db))

	now := time.Now().Truncate(time.Second)
	obs, err := tracker.Observe(1, reachable(false), now)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.Transition != TransitionFirstDown {
		t.Fatalf("got transition %s, want first_observation_down", obs.Transition)
	}
	if obs.State.DownSince == nil || !obs.State.DownSince.Equal(now) {
		t.Errorf("down_since = %v, want %v", obs.State.DownSince, now)
	}
}

func TestObserveUnknownIsNoOp(t *testing.T) {
	db := newTestDB(t)
	store := storage.NewLivenessStorage(db)
	tracker := NewTracker(store)

	obs, err := tracker.Observe(1, model.ProbeResult{ServiceID: 1}, time.Now())
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if obs.Transition != TransitionUnknown {
		t.Fatalf("got transition %s, want unknown", obs.Transition)
	}

	state, err := store.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if state != nil {
		t.Errorf("state persisted for unknown observation: %+v", state)
	}
}
