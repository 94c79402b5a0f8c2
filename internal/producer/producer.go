package producer

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/domain"
)

// Offloader submits a task to the manager
type Offloader interface {
	Offload(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error)
}

// Stats counts what a producer run did
type Stats struct {
	Sent    int
	Failed  int
	Limited int
}

// Producer generates tasks within a quota per window, pausing a Poisson
// distributed number of seconds between iterations.
type Producer struct {
	cfg       *config.ProducerCfg
	generator *Generator
	offloader Offloader
	limiter   *rate.Limiter
	logger    primary.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewProducer(cfg *config.ProducerCfg, generator *Generator, offloader Offloader, logger primary.Logger) *Producer {
	every := rate.Every(cfg.QuotaWindow / time.Duration(cfg.Quota))
	return &Producer{
		cfg:       cfg,
		generator: generator,
		offloader: offloader,
		limiter:   rate.NewLimiter(every, cfg.Quota),
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Run loops until ctx is done or MaxTasks iterations have passed
func (p *Producer) Run(ctx context.Context) Stats {
	var stats Stats
	for i := 0; p.cfg.MaxTasks == 0 || i < p.cfg.MaxTasks; i++ {
		if ctx.Err() != nil {
			break
		}
		p.iterate(ctx, &stats)

		wait := time.Duration(p.generator.Poisson(p.cfg.MeanWait)) * time.Second
		if err := p.sleep(ctx, wait); err != nil {
			break
		}
	}
	p.logger.Info("Producer stopped", "sent", stats.Sent, "failed", stats.Failed, "limited", stats.Limited)
	return stats
}

func (p *Producer) iterate(ctx context.Context, stats *Stats) {
	if !p.limiter.Allow() {
		stats.Limited++
		p.logger.Info("Task limit reached, waiting for the next cycle")
		return
	}

	task := p.generator.Next()
	p.logger.Info("Generated task", "taskType", task.TaskType, "taskSize", task.TaskSize, "deadline", task.Deadline)

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()
	metrics, err := p.offloader.Offload(reqCtx, task)
	if err != nil {
		stats.Failed++
		p.logger.Warn("Task could not be processed", "error", err)
		return
	}
	stats.Sent++
	p.logger.Info("Task processed", "nodeId", metrics.NodeID, "taskId", metrics.TaskID,
		"delay", metrics.Delay, "energy", metrics.Energy, "cacheHit", metrics.CacheHit)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
