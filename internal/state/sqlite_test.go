package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(nil)
	require.NoError(t, s.Open(path))
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Signatures(t *testing.T) {
	s := openStore(t, ":memory:")

	_, ok, err := s.GetSignature("machete")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetSignature("machete", "abc123"))

	sig, ok, err := s.GetSignature("machete")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", sig)

	// Upsert replaces.
	require.NoError(t, s.SetSignature("machete", "def456"))
	sig, ok, err = s.GetSignature("machete")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def456", sig)

	// Keys are independent.
	_, ok, err = s.GetSignature("moe_gen")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_SignaturesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kforge", "state.db")

	s := openStore(t, path)
	require.NoError(t, s.SetSignature("machete", "abc123"))
	require.NoError(t, s.Close())

	s2 := openStore(t, path)
	sig, ok, err := s2.GetSignature("machete")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", sig)
}

func TestSQLiteStore_Runs(t *testing.T) {
	s := openStore(t, ":memory:")

	run, err := s.CreateRun("cuda", "12.8")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusPlanning, run.Status)

	require.NoError(t, s.CompleteRun(run.ID, RunStatusFailed, "generator machete failed"))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, "generator machete failed", got.Error)
	assert.Equal(t, "cuda", got.Backend)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	s := NewSQLiteStore(nil)
	_, _, err := s.GetSignature("x")
	assert.Error(t, err)
	assert.Error(t, s.SetSignature("x", "y"))
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s := openStore(t, path)
	require.NoError(t, s.Migrate())
}
