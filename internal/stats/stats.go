package stats

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrEmptyCategory is returned when Increment is called without a category.
var ErrEmptyCategory = errors.New("stats: empty category")

// Sink stores usage counters.
type Sink interface {
	// Increment adds one to the counter of category.
	Increment(ctx context.Context, category string) error
	// Counts returns every counter.
	Counts(ctx context.Context) (map[string]int64, error)
	// Close releases backend resources.
	Close() error
}

// Open returns a SQLite sink for dsn, or an in-memory sink when dsn is empty.
func Open(ctx context.Context, dsn string) (Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return NewMemory(), nil
	}

	return OpenSQLite(ctx, dsn)
}

// Memory is a process-local Sink.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemory() *Memory {
	return &Memory{counts: map[string]int64{}}
}

func (m *Memory) Increment(_ context.Context, category string) error {
	if category == "" {
		return ErrEmptyCategory
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts[category]++

	return nil
}

func (m *Memory) Counts(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}

	return out, nil
}

func (m *Memory) Close() error { return nil }

// Categories returns the keys of counts in sorted order.
func Categories(counts map[string]int64) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
