package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/iho/txledger/internal/domain"
)

// SliceSource is a RecordSource that replays a fixed list of results.
type SliceSource struct {
	items []SourceItem
	pos   int
}

// SourceItem is one result returned by SliceSource.Next.
type SourceItem struct {
	Record domain.TransactionRecord
	Err    error
}

// NewSliceSource returns a source yielding items, then io.EOF.
func NewSliceSource(items ...SourceItem) *SliceSource {
	return &SliceSource{items: items}
}

// Records wraps plain records as source items.
func Records(recs ...domain.TransactionRecord) []SourceItem {
	items := make([]SourceItem, 0, len(recs))
	for _, r := range recs {
		items = append(items, SourceItem{Record: r})
	}
	return items
}

func (s *SliceSource) Next() (domain.TransactionRecord, error) {
	if s.pos >= len(s.items) {
		return domain.TransactionRecord{}, io.EOF
	}
	item := s.items[s.pos]
	s.pos++
	return item.Record, item.Err
}

// RecordingSink is a SnapshotSink that keeps what it was given.
type RecordingSink struct {
	mu        sync.Mutex
	SinkName  string
	RunID     string
	Snapshots []domain.AccountSnapshot

	WriteFunc func(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error
}

func (s *RecordingSink) Name() string {
	if s.SinkName == "" {
		return "recording"
	}
	return s.SinkName
}

func (s *RecordingSink) Write(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	if s.WriteFunc != nil {
		return s.WriteFunc(ctx, runID, snapshots)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RunID = runID
	s.Snapshots = append([]domain.AccountSnapshot(nil), snapshots...)
	return nil
}

// StaticIDGenerator always returns ID.
type StaticIDGenerator struct {
	ID string
}

func (g StaticIDGenerator) Generate() string {
	return g.ID
}
