package secondary

import "context"

// ResourceSampler reads host resource usage
type ResourceSampler interface {
	// CPUPercent returns an instantaneous CPU utilisation reading in [0,100]
	CPUPercent(ctx context.Context) (float64, error)

	// Memory returns available and total memory in bytes
	Memory(ctx context.Context) (available uint64, total uint64, err error)
}
