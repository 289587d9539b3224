package probes

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/user/homepulse/internal/model"
)

// listenPort opens a real TCP listener on the loopback interface and
// returns its port. The listener is closed on test cleanup.
func listenPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a loopback port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestProbeAll(t *testing.T) {
	open := listenPort(t)
	closed := closedPort(t)

	services := []model.ServiceDescriptor{
		{ID: 1, Name: "open", IP: "127.0.0.1", Port: open},
		{ID: 2, Name: "closed", IP: "127.0.0.1", Port: closed},
		{ID: 3, Name: "no-address", URL: "https://example.com"},
		{ID: 4, Name: "no-port", IP: "127.0.0.1"},
	}

	p := NewProber(4, time.Second)
	results := p.ProbeAll(context.Background(), services)

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	if r := results[1]; r.Reachable == nil || !*r.Reachable {
		t.Errorf("open port: got %v, want reachable", r.Reachable)
	}
	if r := results[2]; r.Reachable == nil || *r.Reachable {
		t.Errorf("closed port: got %v, want not reachable", r.Reachable)
	}
	if r := results[3]; r.Reachable != nil {
		t.Errorf("service without address: got %v, want nil", *r.Reachable)
	}
	if r := results[4]; r.Reachable != nil {
		t.Errorf("service without port: got %v, want nil", *r.Reachable)
	}
}

func TestProbeAllEmpty(t *testing.T) {
	p := NewProber(0, 0)
	results := p.ProbeAll(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func TestProbeAllConcurrencyBound(t *testing.T) {
	open := listenPort(t)

	var services []model.ServiceDescriptor
	for i := int64(1); i <= 20; i++ {
		services = append(services, model.ServiceDescriptor{
			ID: i, Name: "svc", IP: "127.0.0.1", Port: open,
		})
	}

	// Concurrency far below batch size; every probe must still settle.
	p := NewProber(2, time.Second)
	results := p.ProbeAll(context.Background(), services)

	if len(results) != 20 {
		t.Fatalf("got %d results, want 20", len(results))
	}
	for id, r := range results {
		if r.Reachable == nil || !*r.Reachable {
			t.Errorf("service %d: got %v, want reachable", id, r.Reachable)
		}
	}
}
