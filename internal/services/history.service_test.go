package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecordAppends(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history History
	history.Record([]string{"OL1W", "OL2W"}, now)

	assert.Equal(t, []string{"OL1W", "OL2W"}, history.ShownBooks)
	assert.Equal(t, 1, history.ShownCount["OL1W"])
	assert.Equal(t, now, history.LastShown)
}

func TestHistoryRecordCapsAtLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history History
	for i := 0; i < 30; i++ {
		history.Record([]string{fmt.Sprintf("OL%dW", i)}, now.Add(time.Duration(i)*time.Minute))
	}

	require.Len(t, history.ShownBooks, HistoryCap)
	assert.Equal(t, "OL29W", history.ShownBooks[len(history.ShownBooks)-1])
	assert.Equal(t, "OL10W", history.ShownBooks[0])
}

func TestHistoryRecordResetsAfterIdle(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history History
	history.Record([]string{"OL1W", "OL2W"}, start)

	later := start.Add(HistoryIdleReset + time.Minute)
	history.Record([]string{"OL3W"}, later)

	assert.Equal(t, []string{"OL3W"}, history.ShownBooks)
	assert.Zero(t, history.ShownCount["OL1W"])
	assert.Equal(t, later, history.LastShown)
}

func TestHistoryRecordKeepsWithinIdleWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history History
	history.Record([]string{"OL1W"}, start)
	history.Record([]string{"OL2W"}, start.Add(30*time.Minute))

	assert.Equal(t, []string{"OL1W", "OL2W"}, history.ShownBooks)
}

func TestHistoryExcludedKeys(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var history History
	keys := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		keys = append(keys, fmt.Sprintf("OL%dW", i))
	}
	history.Record(keys, now)

	excluded := history.ExcludedKeys()
	require.Len(t, excluded, HistoryExcludeWindow)
	assert.Equal(t, "OL5W", excluded[0])
	assert.Equal(t, "OL14W", excluded[len(excluded)-1])
}

func TestHistoryExcludedKeysShortHistory(t *testing.T) {
	var history History
	history.Record([]string{"OL1W", "OL2W"}, time.Now())

	assert.Equal(t, []string{"OL1W", "OL2W"}, history.ExcludedKeys())
}

func TestMemoryHistoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryHistoryStore()
	userID := uuid.New()
	ctx := context.Background()

	history, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, history.ShownBooks)

	history.Record([]string{"OL1W"}, time.Now())
	require.NoError(t, store.Put(ctx, userID, history))

	loaded, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"OL1W"}, loaded.ShownBooks)
}

func TestMemoryHistoryStorePruneIdle(t *testing.T) {
	store := NewMemoryHistoryStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	staleUser := uuid.New()
	freshUser := uuid.New()

	require.NoError(t, store.Put(ctx, staleUser, History{
		ShownBooks: []string{"OL1W"},
		LastShown:  now.Add(-2 * time.Hour),
	}))
	require.NoError(t, store.Put(ctx, freshUser, History{
		ShownBooks: []string{"OL2W"},
		LastShown:  now.Add(-10 * time.Minute),
	}))

	pruned := store.PruneIdle(ctx, now)
	assert.Equal(t, 1, pruned)

	fresh, err := store.Get(ctx, freshUser)
	require.NoError(t, err)
	assert.Equal(t, []string{"OL2W"}, fresh.ShownBooks)

	stale, err := store.Get(ctx, staleUser)
	require.NoError(t, err)
	assert.Empty(t, stale.ShownBooks)
}
