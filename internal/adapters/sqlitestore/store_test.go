package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tennishighlights/internal/adapters/storetest"
	"tennishighlights/internal/core/ports"
)

func newMemoryStore(t *testing.T) ports.HighlightStore {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := New(db)
	require.NoError(t, err)
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, newMemoryStore)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "highlights.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	_, err = New(db)
	require.NoError(t, err)
	// schema creation is idempotent
	_, err = New(db)
	require.NoError(t, err)
}

func TestTodayIsSingleton(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	s, err := New(db)
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, s.UpdateToday(ctx, storetest.Highlight("a"), true))
	require.NoError(t, s.UpdateToday(ctx, storetest.Highlight("b"), true))
	require.NoError(t, s.UpdateToday(ctx, storetest.Highlight("c"), false))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM highlight_today").Scan(&n))
	assert.Equal(t, 1, n)
}
