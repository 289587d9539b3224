package alert

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/probes"
	"github.com/user/homepulse/internal/storage"
	"github.com/user/homepulse/internal/util"
)

// Pipeline runs one full poll batch: probe every service, feed results
// through the state tracker, evaluate the alert policy and dispatch
// notifications. It always produces a status map for the caller, even when
// alerting is degraded.
type Pipeline struct {
	prober   *probes.Prober
	tracker  *Tracker
	engine   *Engine
	notifier *Notifier
	alerts   *storage.AlertStorage
}

// NewPipeline wires the liveness pipeline against the given database.
func NewPipeline(db *storage.DB, cfg *util.Config) *Pipeline {
	alerts := storage.NewAlertStorage(db)
	return &Pipeline{
		prober:   probes.NewProber(cfg.ProbeConcurrency, cfg.ProbeTimeout),
		tracker:  NewTracker(storage.NewLivenessStorage(db)),
		engine:   NewEngine(cfg.AlertCooldown, cfg.DefaultDownThreshold),
		notifier: NewNotifier(alerts, cfg.WebhookTimeout),
		alerts:   alerts,
	}
}

// Notifier exposes the pipeline's notifier for test-webhook requests.
func (p *Pipeline) Notifier() *Notifier {
	return p.notifier
}

// Run probes the given services and returns the reachability map keyed by
// "ip:port" for addressable services and by bare id otherwise (nil value =
// not probed). Alerting failures for one service never fail the batch.
func (p *Pipeline) Run(ctx context.Context, services []model.ServiceDescriptor) map[string]*bool {
	now := time.Now()

	settings, err := p.alerts.GetSettings()
	if err != nil {
		util.Error("failed to load alert settings, alerting disabled for this poll: %v", err)
		settings = &model.AlertSettings{}
	}

	var valid []model.ServiceDescriptor
	for _, svc := range services {
		if svc.ID <= 0 {
			util.Debug("skipping service entry without id (name=%q)", svc.Name)
			continue
		}
		valid = append(valid, svc)
	}

	results := p.prober.ProbeAll(ctx, valid)

	statuses := make(map[string]*bool, len(valid))
	for _, svc := range valid {
		result := results[svc.ID]
		statuses[statusKey(svc)] = result.Reachable

		// Unaddressable services are reported as null and never touch
		// state or alerting.
		if result.Reachable == nil {
			continue
		}

		p.evaluate(svc, result, settings, now)
	}

	return statuses
}

func (p *Pipeline) evaluate(svc model.ServiceDescriptor, result model.ProbeResult,
	settings *model.AlertSettings, now time.Time) {

	obs, err := p.tracker.Observe(svc.ID, result, now)
	if err != nil {
		util.Error("liveness update failed for service %d, skipping alert evaluation: %v", svc.ID, err)
		return
	}

	override, err := p.alerts.GetServiceConfig(svc.ID)
	if err != nil {
		util.Error("alert config read failed for service %d, skipping alert evaluation: %v", svc.ID, err)
		return
	}

	decision := p.engine.Evaluate(obs, svc, settings, override, now)
	if !decision.Fire {
		return
	}

	util.Info("alert fired: service=%q type=%s webhook=%t", svc.Name, decision.AlertType, decision.SendWebhook)

	if _, err := p.notifier.Dispatch(decision, svc, now); err != nil {
		util.Error("failed to record alert history for service %d: %v", svc.ID, err)
	}

	// Stamp the cooldown marker for the current outage. Recovery clears it
	// in the tracker, so only down alerts are stamped.
	if decision.AlertType == model.AlertTypeDown {
		if err := p.tracker.MarkAlertSent(svc.ID, now); err != nil {
			util.Error("failed to mark alert sent for service %d: %v", svc.ID, err)
		}
	}
}

func statusKey(svc model.ServiceDescriptor) string {
	if svc.Addressable() {
		return net.JoinHostPort(svc.IP, strconv.Itoa(svc.Port))
	}
	return strconv.FormatInt(svc.ID, 10)
}
