// Package alert implements the liveness state machine, alert policy and
// webhook notification pipeline.
package alert

import (
	"sync"
	"time"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/storage"
)

// Transition is the state-machine event produced by one observation.
type Transition int

const (
	TransitionUnknown Transition = iota
	TransitionFirstUp
	TransitionFirstDown
	TransitionNoChangeUp
	TransitionNoChangeDown
	TransitionWentDown
	TransitionRecovered
)

var transitionNames = map[Transition]string{
	TransitionUnknown:      "unknown",
	TransitionFirstUp:      "first_observation_up",
	TransitionFirstDown:    "first_observation_down",
	TransitionNoChangeUp:   "no_change_up",
	TransitionNoChangeDown: "no_change_down",
	TransitionWentDown:     "went_down",
	TransitionRecovered:    "recovered",
}

// String returns the transition name.
func (t Transition) String() string {
	return transitionNames[t]
}

// Down reports whether the transition describes a service in outage.
func (t Transition) Down() bool {
	return t == TransitionFirstDown || t == TransitionWentDown || t == TransitionNoChangeDown
}

// Observation is the result of applying one probe result to a service's
// persisted state.
type Observation struct {
	ServiceID  int64
	Transition Transition

	// State is the liveness state after the update. Nil for unknown
	// observations, which never touch state.
	State *model.LivenessState

	// DownDuration is how long the current outage has lasted. Only
	// meaningful for down transitions.
	DownDuration time.Duration

	// PrevAlertSent is the last-alert-sent marker as it stood before this
	// observation. On recovery the marker is cleared from state, so the
	// policy engine reads it from here.
	PrevAlertSent *time.Time
}

// Tracker applies probe results to persisted per-service liveness state.
// Updates for the same service are serialized with a per-key lock so
// overlapping polls cannot corrupt down_since or last_alert_sent.
type Tracker struct {
	store *storage.LivenessStorage

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewTracker creates a new tracker backed by the given storage.
func NewTracker(store *storage.LivenessStorage) *Tracker {
	return &Tracker{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (t *Tracker) lockFor(serviceID int64) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[serviceID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[serviceID] = l
	}
	return l
}

// Observe updates the persisted state for one service and returns the
// resulting transition. Unknown probe results are a no-op.
func (t *Tracker) Observe(serviceID int64, result model.ProbeResult, now time.Time) (Observation, error) {
	if result.Reachable == nil {
		return Observation{ServiceID: serviceID, Transition: TransitionUnknown}, nil
	}
	reachable := *result.Reachable

	l := t.lockFor(serviceID)
	l.Lock()
	defer l.Unlock()

	prior, err := t.store.Get(serviceID)
	if err != nil {
		return Observation{ServiceID: serviceID, Transition: TransitionUnknown}, err
	}

	obs := Observation{ServiceID: serviceID}

	if prior == nil {
		state := &model.LivenessState{
			ServiceID:   serviceID,
			LastChecked: now,
		}
		if reachable {
			state.Status = model.StatusUp
			obs.Transition = TransitionFirstUp
		} else {
			state.Status = model.StatusDown
			state.DownSince = &now
			obs.Transition = TransitionFirstDown
		}
		if err := t.store.Upsert(state); err != nil {
			return obs, err
		}
		obs.State = state
		return obs, nil
	}

	obs.PrevAlertSent = prior.LastAlertSent
	wasDown := prior.Status == model.StatusDown
	state := *prior
	state.LastChecked = now

	switch {
	case wasDown && !reachable:
		obs.Transition = TransitionNoChangeDown
		if state.DownSince == nil {
			// Should not happen for a down row; restart the episode clock
			// rather than alerting on a bogus duration.
			state.DownSince = &now
		}
		obs.DownDuration = now.Sub(*state.DownSince)

	case wasDown && reachable:
		obs.Transition = TransitionRecovered
		state.Status = model.StatusUp
		state.DownSince = nil
		state.LastAlertSent = nil

	case !wasDown && !reachable:
		obs.Transition = TransitionWentDown
		state.Status = model.StatusDown
		state.DownSince = &now
		state.LastAlertSent = nil
		obs.DownDuration = 0

	default:
		obs.Transition = TransitionNoChangeUp
	}

	if err := t.store.Upsert(&state); err != nil {
		return obs, err
	}
	obs.State = &state
	return obs, nil
}

// MarkAlertSent stamps the current outage's last-alert-sent marker.
func (t *Tracker) MarkAlertSent(serviceID int64, sentAt time.Time) error {
	l := t.lockFor(serviceID)
	l.Lock()
	defer l.Unlock()
	return t.store.MarkAlertSent(serviceID, sentAt)
}
