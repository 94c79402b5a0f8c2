package secondary

import (
	"context"
	"time"
)

// ResultCache stores computed task results by fingerprint.
// Get reports found=false for absent or expired entries.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (result string, found bool, err error)
	Set(ctx context.Context, fingerprint string, result string, ttl time.Duration) error
}
