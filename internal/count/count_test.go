package count

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printroom/stockroom/internal/db"
	"github.com/printroom/stockroom/internal/model"
	"github.com/printroom/stockroom/internal/store"
)

func seed(t *testing.T) *sql.DB {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()
	for _, it := range []struct {
		code  string
		name  string
		count int
	}{
		{"A1", "Pen", 3},
		{"B2", "Paper", 0},
	} {
		_, err := store.CreateItem(ctx, database, it.code, model.ItemDetails{Name: it.name, Description: "d", Location: "l"})
		require.NoError(t, err)
		require.NoError(t, store.SetItemCount(ctx, database, it.code, it.count))
	}
	return database
}

func itemCount(t *testing.T, database *sql.DB, code string) int {
	t.Helper()
	item, err := store.GetItem(context.Background(), database, code)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Count
}

func TestSessionScanAndTallies(t *testing.T) {
	database := seed(t)
	s := NewSession("s1", "alice", database, time.Now())
	ctx := context.Background()

	for _, code := range []string{"A1", "B2", "A1"} {
		_, err := s.Scan(ctx, code)
		require.NoError(t, err)
	}

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Pen (Scanned 1 times)", entries[0].Label())
	assert.Equal(t, "Paper (Scanned 1 times)", entries[1].Label())
	assert.Equal(t, "Pen (Scanned 2 times)", entries[2].Label())

	assert.Equal(t, []Tally{
		{Code: "A1", Name: "Pen", Count: 2},
		{Code: "B2", Name: "Paper", Count: 1},
	}, s.Tallies())
}

func TestSessionScanUnknownCode(t *testing.T) {
	s := NewSession("s1", "alice", seed(t), time.Now())

	_, err := s.Scan(context.Background(), "ZZ")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, s.Entries())
	assert.Empty(t, s.Tallies())
}

func TestSessionRemoveEntry(t *testing.T) {
	s := NewSession("s1", "alice", seed(t), time.Now())
	ctx := context.Background()
	for _, code := range []string{"A1", "B2", "A1"} {
		_, err := s.Scan(ctx, code)
		require.NoError(t, err)
	}

	require.NoError(t, s.RemoveEntry(1))
	assert.Equal(t, []Tally{{Code: "A1", Name: "Pen", Count: 2}}, s.Tallies())

	require.NoError(t, s.RemoveEntry(0))
	assert.Equal(t, []Tally{{Code: "A1", Name: "Pen", Count: 1}}, s.Tallies())
	assert.Len(t, s.Entries(), 1)

	assert.ErrorIs(t, s.RemoveEntry(5), ErrNoEntry)
	assert.ErrorIs(t, s.RemoveEntry(-1), ErrNoEntry)
}

func TestSessionApply(t *testing.T) {
	database := seed(t)
	s := NewSession("s1", "alice", database, time.Now())
	ctx := context.Background()
	for _, code := range []string{"A1", "B2", "B2"} {
		_, err := s.Scan(ctx, code)
		require.NoError(t, err)
	}

	require.NoError(t, s.Apply(ctx))

	assert.Equal(t, 4, itemCount(t, database, "A1"))
	assert.Equal(t, 2, itemCount(t, database, "B2"))
	assert.True(t, s.Closed())

	_, err := s.Scan(ctx, "A1")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Apply(ctx), ErrSessionClosed)
	assert.Equal(t, 4, itemCount(t, database, "A1"))
}

func TestSessionCancel(t *testing.T) {
	database := seed(t)
	s := NewSession("s1", "alice", database, time.Now())
	_, err := s.Scan(context.Background(), "A1")
	require.NoError(t, err)

	s.Cancel()

	assert.ErrorIs(t, s.Apply(context.Background()), ErrSessionClosed)
	assert.Equal(t, 3, itemCount(t, database, "A1"))
}

func TestManagerLifecycle(t *testing.T) {
	database := seed(t)
	m := NewManager(database, 0)
	ctx := context.Background()

	s := m.Create("alice")
	require.NotEmpty(t, s.ID)
	assert.Same(t, s, m.Get(s.ID))
	assert.Nil(t, m.Get("missing"))

	_, err := s.Scan(ctx, "A1")
	require.NoError(t, err)
	require.NoError(t, m.Apply(ctx, s))

	assert.Nil(t, m.Get(s.ID))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 4, itemCount(t, database, "A1"))
}

func TestManagerDiscard(t *testing.T) {
	m := NewManager(seed(t), 0)
	s := m.Create("alice")

	assert.True(t, m.Discard(s.ID))
	assert.False(t, m.Discard(s.ID))
	assert.True(t, s.Closed())
	assert.Nil(t, m.Get(s.ID))
}

func TestManagerCreateUniqueIDs(t *testing.T) {
	m := NewManager(seed(t), 0)
	a, b := m.Create("alice"), m.Create("bob")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Len())
}

func TestManagerExpire(t *testing.T) {
	m := NewManager(seed(t), time.Minute)
	stale := m.Create("alice")
	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	fresh := m.Create("bob")

	assert.Equal(t, 1, m.Expire())
	assert.Nil(t, m.Get(stale.ID))
	assert.True(t, stale.Closed())
	assert.Same(t, fresh, m.Get(fresh.ID))
}
