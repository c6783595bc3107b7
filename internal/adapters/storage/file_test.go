package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polysim/internal/adapters/storage"
	"github.com/alejandrodnm/polysim/internal/domain"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "bets.json", storage.FileName("Default"))
	assert.Equal(t, "bets.json", storage.FileName(""))
	assert.Equal(t, "bets_alice.json", storage.FileName("alice"))
}

func TestFileStorage_LoadMissing(t *testing.T) {
	s := storage.NewFileStorage(filepath.Join(t.TempDir(), "bets.json"))
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestFileStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storage.NewFileStorage(filepath.Join(t.TempDir(), "nested", "bets.json"))

	want := sampleSnapshot()
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)

	// save(load()) es idempotente
	require.NoError(t, s.Save(ctx, got))
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, again)
}

func TestFileStorage_PrettyPrintedNumbers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bets.json")
	s := storage.NewFileStorage(path)
	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"balance\": 1150.0000000000000001")

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	bets := generic["bets"].([]any)
	second := bets[1].(map[string]any)
	assert.Nil(t, second["market_id"])
	assert.Nil(t, second["result_checked_at"])
	_, isNumber := second["amount"].(float64)
	assert.True(t, isNumber, "amount must be a JSON number")
}

func TestFileStorage_LegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	legacy := `{
  "balance": 900.0,
  "bets": [
    {
      "id": 1, "date": "2025-11-02T18:04:05.123456", "event": "Event X",
      "market": "Will X win?", "market_id": null, "outcome": "Yes",
      "amount": 100.0, "price": 0.4, "current_price": 0.4,
      "potential_payout": 250.0, "status": "OPEN", "result_checked_at": null
    }
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	snap, err := storage.NewFileStorage(path).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Balance.Equal(d("900")))
	require.Len(t, snap.Bets, 1)
	assert.Empty(t, snap.Bets[0].MarketID)
	assert.Empty(t, snap.Bets[0].Category)
	assert.False(t, snap.Bets[0].Date.IsZero())
	assert.True(t, snap.Bets[0].PotentialPayout.Equal(d("250")))
}

func TestFileStorage_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"balance": "lots"`), 0o644))

	_, err := storage.NewFileStorage(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestFileStorage_UnknownStatusRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	doc := `{"balance": 1, "bets": [{"id": 1, "date": "2026-01-01T00:00:00Z", "status": "VOID", "amount": 1, "price": 0.5}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := storage.NewFileStorage(path).Load(context.Background())
	assert.ErrorContains(t, err, "unknown status")
}

func TestFileStorage_ListProfiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, p := range []string{"Default", "alice", "bob"} {
		require.NoError(t, storage.NewFileStorage(storage.FilePath(dir, p)).Save(ctx, domain.DefaultSnapshot()))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	profiles, err := storage.NewFileStorage(storage.FilePath(dir, "Default")).ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "alice", "bob"}, profiles)

	// no quedan temporales tras los Save
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}
