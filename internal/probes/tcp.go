// Package probes performs TCP reachability checks.
package probes

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/user/homepulse/internal/model"
)

// Prober performs concurrent TCP-connect reachability checks.
type Prober struct {
	concurrency int
	timeout     time.Duration
}

// NewProber creates a new prober.
func NewProber(concurrency int, timeout time.Duration) *Prober {
	if concurrency <= 0 {
		concurrency = 50
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ProbeAll checks reachability for a batch of services concurrently and
// returns a result per service id. The call returns once every probe has
// settled; a slow probe delays only its own slot. Services without an
// address get a nil Reachable and are never dialed.
func (p *Prober) ProbeAll(ctx context.Context, services []model.ServiceDescriptor) map[int64]model.ProbeResult {
	results := make([]model.ProbeResult, len(services))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)

	for i, svc := range services {
		if !svc.Addressable() {
			results[i] = model.ProbeResult{ServiceID: svc.ID}
			continue
		}

		wg.Add(1)
		go func(idx int, svc model.ServiceDescriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reachable := p.probe(ctx, svc.IP, svc.Port)
			results[idx] = model.ProbeResult{ServiceID: svc.ID, Reachable: &reachable}
		}(i, svc)
	}

	wg.Wait()

	out := make(map[int64]model.ProbeResult, len(services))
	for _, r := range results {
		out[r.ServiceID] = r
	}
	return out
}

// probe opens a single TCP connection. Any dial error (refused, timeout,
// unreachable, DNS failure) counts as not reachable.
func (p *Prober) probe(ctx context.Context, ip string, port int) bool {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
