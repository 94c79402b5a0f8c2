package statusport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

const statusKeyPrefix = "status:"

var _ secondary.StatusRepository = (*StatusRepository)(nil)

// StatusRepository implements the StatusRepository interface with Redis.
// Keys carry no expiration: stale entries are filtered by the registry.
type StatusRepository struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// NewStatusRepository creates a new Redis status repository
func NewStatusRepository(redisClient *redis.Client, logger primary.Logger) *StatusRepository {
	return &StatusRepository{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveStatus saves a status record to Redis under its node id
func (r *StatusRepository) SaveStatus(ctx context.Context, record domain.StatusRecord) error {
	statusJSON, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("Failed to marshal status", "error", err)
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	statusKey := fmt.Sprintf("%s%s", statusKeyPrefix, record.NodeID)
	if err := r.redisClient.Set(ctx, statusKey, statusJSON, 0).Err(); err != nil {
		r.logger.Error("Failed to save status", "nodeId", record.NodeID, "error", err)
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// GetStatus retrieves a node's status from Redis, nil when absent
func (r *StatusRepository) GetStatus(ctx context.Context, nodeID string) (*domain.StatusRecord, error) {
	statusKey := fmt.Sprintf("%s%s", statusKeyPrefix, nodeID)
	statusJSON, err := r.redisClient.Get(ctx, statusKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get status", "nodeId", nodeID, "error", err)
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var record domain.StatusRecord
	if err := json.Unmarshal(statusJSON, &record); err != nil {
		r.logger.Error("Failed to unmarshal status", "error", err)
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return &record, nil
}

// GetAllStatuses retrieves every status record from Redis
func (r *StatusRepository) GetAllStatuses(ctx context.Context) ([]domain.StatusRecord, error) {
	var cursor uint64
	var statusKeys []string
	var err error

	// Use SCAN to iterate over keys with the status prefix
	for {
		var keys []string
		keys, cursor, err = r.redisClient.Scan(ctx, cursor, statusKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan status keys: %w", err)
		}
		statusKeys = append(statusKeys, keys...)
		if cursor == 0 {
			break
		}
	}

	records := make([]domain.StatusRecord, 0, len(statusKeys))
	if len(statusKeys) == 0 {
		return records, nil
	}

	statusData, err := r.redisClient.MGet(ctx, statusKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve status data: %w", err)
	}

	for _, data := range statusData {
		s, ok := data.(string)
		if !ok {
			continue
		}
		var record domain.StatusRecord
		if err := json.Unmarshal([]byte(s), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status data: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}
