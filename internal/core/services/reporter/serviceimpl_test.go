package reporter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/fog-offload.net/internal/adapter/logging"
	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

type stubSampler struct{}

func (stubSampler) CPUPercent(context.Context) (float64, error) { return 42.5, nil }

func (stubSampler) Memory(context.Context) (uint64, uint64, error) { return 6 << 30, 8 << 30, nil }

type stubQueue int

func (q stubQueue) InFlight() int { return int(q) }

type flakyPusher struct {
	mu       sync.Mutex
	failures int
	calls    int
	last     domain.StatusRecord
}

func (p *flakyPusher) PushStatus(_ context.Context, rec domain.StatusRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = rec
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func newReporter(p *flakyPusher) *StatusReporter {
	cfg := &config.ReporterCfg{MaxRetries: 3, RetryDelay: time.Millisecond, PushTimeout: time.Second}
	return NewStatusReporter("2", 5001, cfg, stubSampler{}, stubQueue(4), p, metrics.NewWorkerMetrics(), logging.NewNopLogger())
}

func TestReportOnceSuccess(t *testing.T) {
	p := &flakyPusher{}
	if err := newReporter(p).ReportOnce(context.Background()); err != nil {
		t.Fatalf("ReportOnce: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
	rec := p.last
	if rec.NodeID != "2" || rec.Port != 5001 {
		t.Errorf("identity = %s:%d", rec.NodeID, rec.Port)
	}
	if err := rec.Complete(); err != nil {
		t.Fatalf("pushed record incomplete: %v", err)
	}
	if *rec.CPUUsage != 42.5 || *rec.QueueLength != 4 || *rec.MemoryTotal != 8<<30 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestReportOnceRetriesThenSucceeds(t *testing.T) {
	p := &flakyPusher{failures: 2}
	if err := newReporter(p).ReportOnce(context.Background()); err != nil {
		t.Fatalf("ReportOnce: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestReportOnceDropsAfterRetries(t *testing.T) {
	p := &flakyPusher{failures: 10}
	err := newReporter(p).ReportOnce(context.Background())
	if !errors.Is(err, errs.ErrStatusPushFailure) {
		t.Fatalf("err = %v, want ErrStatusPushFailure", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestReportOnceStopsOnCancel(t *testing.T) {
	p := &flakyPusher{failures: 10}
	r := newReporter(p)
	r.cfg.RetryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan error)
	go func() { done <- r.ReportOnce(ctx) }()
	select {
	case err := <-done:
		if !errors.Is(err, errs.ErrStatusPushFailure) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry wait ignored cancellation")
	}
}
