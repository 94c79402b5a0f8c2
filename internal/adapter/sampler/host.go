package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
)

var _ secondary.ResourceSampler = (*HostSampler)(nil)

// HostSampler reads CPU and memory of the local host with gopsutil.
// A zero window gives an instantaneous reading relative to the previous call.
type HostSampler struct {
	window time.Duration
}

func NewHostSampler(window time.Duration) *HostSampler {
	return &HostSampler{window: window}
}

// CPUPercent returns overall CPU utilisation
func (s *HostSampler) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, s.window, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("failed to read cpu usage: no samples")
	}
	return percents[0], nil
}

// Memory returns available and total bytes of virtual memory
func (s *HostSampler) Memory(ctx context.Context) (uint64, uint64, error) {
	vmStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read memory: %w", err)
	}
	return vmStat.Available, vmStat.Total, nil
}

// Instant returns a sampler over the same host with no sampling window
func (s *HostSampler) Instant() *HostSampler {
	return &HostSampler{}
}
