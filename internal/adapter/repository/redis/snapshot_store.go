package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/txledger/internal/domain"
)

// DefaultSnapshotTTL is used when NewSnapshotStore is given a non-positive TTL.
const DefaultSnapshotTTL = 24 * time.Hour

// SnapshotStore implements usecase.SnapshotSink using Redis.
//
// Each run produces one hash per client at <prefix><runID>:client:<id> and a
// set of client ids at <prefix><runID>:clients. Every key expires after ttl.
type SnapshotStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{
		client: client,
		prefix: "txledger:",
		ttl:    ttl,
	}
}

// Name implements usecase.SnapshotSink.
func (s *SnapshotStore) Name() string {
	return "redis"
}

// Write stores snapshots for runID in a single MULTI/EXEC pipeline.
func (s *SnapshotStore) Write(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	clientsKey := s.ClientsKey(runID)
	members := make([]any, 0, len(snapshots))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, snap := range snapshots {
			key := s.AccountKey(runID, snap.ClientID)
			pipe.HSet(ctx, key,
				"available", snap.Available.String(),
				"held", snap.Held.String(),
				"total", snap.Total.String(),
				"locked", strconv.FormatBool(snap.Locked),
			)
			pipe.Expire(ctx, key, s.ttl)
			members = append(members, strconv.FormatUint(uint64(snap.ClientID), 10))
		}
		pipe.SAdd(ctx, clientsKey, members...)
		pipe.Expire(ctx, clientsKey, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}

	return nil
}

// AccountKey returns the hash key holding one client's snapshot.
func (s *SnapshotStore) AccountKey(runID string, clientID uint16) string {
	return fmt.Sprintf("%s%s:client:%d", s.prefix, runID, clientID)
}

// ClientsKey returns the set key listing every client of a run.
func (s *SnapshotStore) ClientsKey(runID string) string {
	return s.prefix + runID + ":clients"
}
