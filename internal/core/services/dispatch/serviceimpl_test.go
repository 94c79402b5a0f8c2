package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/fog-offload.net/internal/adapter/logging"
	"gitlab.com/fog-offload.net/internal/adapter/memory"
	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/services/registry"
	"gitlab.com/fog-offload.net/internal/core/services/selector"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

type fakeForwarder struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeForwarder) Forward(_ context.Context, node domain.Node, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, node.ID)
	if f.fail[node.ID] {
		return nil, errors.New("connection refused")
	}
	return &domain.TaskMetrics{
		TaskID: domain.Fingerprint(task, domain.FingerprintPolicy{}),
		NodeID: node.ID,
		Delay:  10.1,
		Energy: 50.5,
		Result: "Processed " + task.TaskType + " on fog node " + node.ID,
	}, nil
}

type auditRecorder struct {
	mu      sync.Mutex
	records []domain.DispatchRecord
}

func (a *auditRecorder) RecordDispatch(_ context.Context, rec domain.DispatchRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

var (
	t0    = time.Unix(50_000, 0)
	nodes = domain.NewNodeDirectory([]domain.Node{
		{ID: "1", URL: "http://localhost:5000", Port: 5000},
		{ID: "2", URL: "http://localhost:5001", Port: 5001},
		{ID: "3", URL: "http://localhost:5002", Port: 5002},
	})
	task = domain.TaskRequest{TaskType: "image_processing", TaskSize: 50, Deadline: 10}
)

type fixture struct {
	svc      *DispatchService
	registry *registry.StatusRegistry
	fwd      *fakeForwarder
	audit    *auditRecorder
}

func newFixture(t *testing.T, failover bool) *fixture {
	t.Helper()
	cfg := &config.DispatcherCfg{
		StalenessThreshold:    30 * time.Second,
		ForwardTimeout:        time.Second,
		MaxConcurrentForwards: 4,
		FailoverEnabled:       failover,
		MaxForwardAttempts:    2,
	}
	logger := logging.NewNopLogger()
	reg := registry.NewStatusRegistry(memory.NewStatusStore(), nodes, cfg.StalenessThreshold, logger)
	fwd := &fakeForwarder{fail: map[string]bool{}}
	audit := &auditRecorder{}
	svc := NewDispatchService(cfg, reg, selector.NewNodeSelector(domain.WeightsCPUHeavy, logger), nodes, fwd, audit, metrics.NewDispatcherMetrics(), logger)
	svc.now = func() time.Time { return t0 }
	return &fixture{svc: svc, registry: reg, fwd: fwd, audit: audit}
}

func (f *fixture) report(t *testing.T, id string, cpu float64, at time.Time) {
	t.Helper()
	rec := domain.NewStatusRecord(id, cpu, 4096, 8192, 0, 5000, at)
	if err := f.registry.Update(context.Background(), rec, at); err != nil {
		t.Fatalf("Update %s: %v", id, err)
	}
}

func (f *fixture) onlyAudit(t *testing.T) domain.DispatchRecord {
	t.Helper()
	if len(f.audit.records) != 1 {
		t.Fatalf("audit records = %d, want exactly 1", len(f.audit.records))
	}
	return f.audit.records[0]
}

func TestOffloadRelaysBestNode(t *testing.T) {
	f := newFixture(t, false)
	f.report(t, "1", 80, t0)
	f.report(t, "2", 10, t0)

	got, err := f.svc.Offload(context.Background(), task)
	if err != nil {
		t.Fatalf("Offload: %v", err)
	}
	if got.NodeID != "2" || got.Delay != 10.1 || got.Energy != 50.5 {
		t.Errorf("relayed %+v", got)
	}
	rec := f.onlyAudit(t)
	if rec.Status != domain.DispatchOffloaded || rec.FogNode != "2" || rec.Response == nil {
		t.Errorf("audit = %+v", rec)
	}
}

func TestOffloadMalformed(t *testing.T) {
	f := newFixture(t, false)
	f.report(t, "1", 10, t0)

	_, err := f.svc.Offload(context.Background(), domain.TaskRequest{TaskType: "image_processing"})
	if !errors.Is(err, errs.ErrMalformedRequest) {
		t.Fatalf("err = %v, want ErrMalformedRequest", err)
	}
	if len(f.fwd.calls) != 0 {
		t.Error("malformed task must not be forwarded")
	}
	if rec := f.onlyAudit(t); rec.Status != domain.DispatchRejected {
		t.Errorf("status = %s", rec.Status)
	}
}

func TestOffloadNoCapacityWhenAllStale(t *testing.T) {
	f := newFixture(t, false)
	f.report(t, "1", 10, t0.Add(-31*time.Second))
	f.report(t, "2", 10, t0.Add(-time.Minute))

	_, err := f.svc.Offload(context.Background(), task)
	if !errors.Is(err, errs.ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
	if rec := f.onlyAudit(t); rec.Status != domain.DispatchNoFogAvailable {
		t.Errorf("status = %s", rec.Status)
	}
}

func TestOffloadNoCapacityWhenEmpty(t *testing.T) {
	f := newFixture(t, false)
	if _, err := f.svc.Offload(context.Background(), task); !errors.Is(err, errs.ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
	f.onlyAudit(t)
}

func TestOffloadForwardFailureWithoutFailover(t *testing.T) {
	f := newFixture(t, false)
	f.report(t, "1", 10, t0)
	f.report(t, "2", 50, t0)
	f.fwd.fail["1"] = true

	_, err := f.svc.Offload(context.Background(), task)
	if !errors.Is(err, errs.ErrForwardFailure) {
		t.Fatalf("err = %v, want ErrForwardFailure", err)
	}
	if len(f.fwd.calls) != 1 {
		t.Errorf("forward calls = %v, want only the best node", f.fwd.calls)
	}
	rec := f.onlyAudit(t)
	if rec.Status != domain.DispatchFailed || rec.FogNode != "1" || rec.Error == "" {
		t.Errorf("audit = %+v", rec)
	}
}

func TestOffloadFailover(t *testing.T) {
	f := newFixture(t, true)
	f.report(t, "1", 10, t0)
	f.report(t, "2", 50, t0)
	f.report(t, "3", 90, t0)
	f.fwd.fail["1"] = true

	got, err := f.svc.Offload(context.Background(), task)
	if err != nil {
		t.Fatalf("Offload: %v", err)
	}
	if got.NodeID != "2" {
		t.Errorf("served by %s, want 2", got.NodeID)
	}
	rec := f.onlyAudit(t)
	if len(rec.Attempts) != 2 || rec.Attempts[0].Error == "" || rec.Attempts[1].Error != "" {
		t.Errorf("attempts = %+v", rec.Attempts)
	}
}

func TestOffloadFailoverBounded(t *testing.T) {
	f := newFixture(t, true)
	for _, id := range []string{"1", "2", "3"} {
		f.report(t, id, 10, t0)
		f.fwd.fail[id] = true
	}

	if _, err := f.svc.Offload(context.Background(), task); !errors.Is(err, errs.ErrForwardFailure) {
		t.Fatalf("err = %v", err)
	}
	if len(f.fwd.calls) != 2 {
		t.Errorf("forward calls = %v, want 2", f.fwd.calls)
	}
	if got := f.fwd.calls; got[0] != "1" || got[1] != "2" {
		t.Errorf("ties must break by node id, got %v", got)
	}
}

func TestOffloadSkipsIncompleteRecords(t *testing.T) {
	f := newFixture(t, false)
	partial := domain.StatusRecord{NodeID: "1", Port: 5000}
	if err := f.registry.Update(context.Background(), partial, t0); err != nil {
		t.Fatal(err)
	}
	f.report(t, "2", 99, t0)

	got, err := f.svc.Offload(context.Background(), task)
	if err != nil {
		t.Fatalf("Offload: %v", err)
	}
	if got.NodeID != "2" {
		t.Errorf("served by %s, want 2", got.NodeID)
	}

	views, err := f.svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(views) != 2 || views[0].Score != nil || views[0].Selectable || !views[1].Selectable {
		t.Errorf("overview = %+v", views)
	}
}

func TestReject(t *testing.T) {
	f := newFixture(t, false)
	f.svc.Reject(context.Background(), domain.TaskRequest{}, errs.ErrMalformedRequest)
	if rec := f.onlyAudit(t); rec.Status != domain.DispatchRejected || rec.Error != "malformed request" {
		t.Errorf("audit = %+v", rec)
	}
}
