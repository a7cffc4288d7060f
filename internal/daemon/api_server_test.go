package daemon

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"

	"recall/internal/api"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/testsupport"
	"recall/internal/workflow"
)

type idleRunner struct{}

func (idleRunner) Run(context.Context, jobs.Task) error { return nil }

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	d, err := New(cfg, store, jobs.NewRegistry(), workflow.NewPool(cfg, idleRunner{}, logger), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestAPIServerServesListOnBoundAddress(t *testing.T) {
	d := newTestDaemon(t)
	srv := d.api
	if err := srv.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.stop)

	req, err := http.NewRequest(http.MethodGet, "http://"+srv.address()+"/api/memories", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Owner-ID", "alice")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var views []api.MemoryView
	if err := json.NewDecoder(resp.Body).Decode(&views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty list, got %d", len(views))
	}
}

func TestAPIServerStartFailsWhenAddressInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	d := newTestDaemon(t)
	d.api.bind = busy.Addr().String()
	if err := d.api.start(context.Background()); err == nil {
		d.api.stop()
		t.Fatal("expected start to fail on a busy address")
	}
	if d.api.address() != busy.Addr().String() {
		t.Fatalf("expected configured bind before listening, got %q", d.api.address())
	}
}
