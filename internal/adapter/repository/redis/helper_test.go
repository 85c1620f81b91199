package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestStore starts an in-memory server and returns a SnapshotStore on it
// together with a raw client for assertions. Everything is closed on cleanup.
func newTestStore(t *testing.T, ttl time.Duration) (*SnapshotStore, *redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewSnapshotStore(client, ttl), client, mr
}
