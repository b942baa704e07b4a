package stats

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sinks(t *testing.T) map[string]Sink {
	t.Helper()

	lite, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Sink{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestSink_IncrementAndCounts(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, sink.Increment(ctx, "config"))
			require.NoError(t, sink.Increment(ctx, "config"))
			require.NoError(t, sink.Increment(ctx, "rows"))

			got, err := sink.Counts(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]int64{"config": 2, "rows": 1}, got)
		})
	}
}

func TestSink_EmptyCategory(t *testing.T) {
	for name, sink := range sinks(t) {
		t.Run(name, func(t *testing.T) {
			err := sink.Increment(context.Background(), "")
			assert.ErrorIs(t, err, ErrEmptyCategory)
		})
	}
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			_ = m.Increment(context.Background(), "config_schema")
		}()
	}

	wg.Wait()

	got, err := m.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), got["config_schema"])
}

func TestSQLite_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "stats.db")

	first, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Increment(ctx, "rows"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)

	defer second.Close()

	require.NoError(t, second.Increment(ctx, "rows"))

	got, err := second.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"rows": 2}, got)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), "  ")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(context.Background(), filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)

	defer s.Close()

	assert.IsType(t, &SQLite{}, s)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"config", "rows"}, Categories(map[string]int64{"rows": 1, "config": 3}))
	assert.Empty(t, Categories(nil))
}
