package services

import (
	"context"
	"sync"
	"time"
	"wellread/internal/database"
	"wellread/internal/logger"

	"github.com/google/uuid"
)

const (
	// HistoryCap bounds how many shown book keys are retained per user.
	HistoryCap = 20

	// HistoryExcludeWindow is how many of the most recently shown keys are
	// excluded from the next recommendation round.
	HistoryExcludeWindow = 10

	// HistoryIdleReset clears a history that has not been touched for this
	// long before it is extended again.
	HistoryIdleReset = time.Hour

	historyCachePrefix = "recommendation_history"
)

// History is the rolling record of books already shown to one user. It is an
// optimization to reduce repeats, not a correctness guarantee; concurrent
// updates are last-write-wins.
type History struct {
	ShownBooks []string       `json:"shownBooks"`
	ShownCount map[string]int `json:"shownCount"`
	LastShown  time.Time      `json:"lastShown"`
}

// ExcludedKeys returns the most recently shown keys, newest-last, capped at
// the exclusion window.
func (h *History) ExcludedKeys() []string {
	if len(h.ShownBooks) <= HistoryExcludeWindow {
		return h.ShownBooks
	}
	return h.ShownBooks[len(h.ShownBooks)-HistoryExcludeWindow:]
}

// Record appends the shown keys, resetting first when the history has been
// idle past the reset interval, and trims to the cap.
func (h *History) Record(bookKeys []string, now time.Time) {
	if now.Sub(h.LastShown) > HistoryIdleReset {
		h.ShownBooks = nil
		h.ShownCount = nil
	}

	if h.ShownCount == nil {
		h.ShownCount = make(map[string]int)
	}

	for _, key := range bookKeys {
		h.ShownBooks = append(h.ShownBooks, key)
		h.ShownCount[key]++
	}

	if len(h.ShownBooks) > HistoryCap {
		h.ShownBooks = h.ShownBooks[len(h.ShownBooks)-HistoryCap:]
	}

	h.LastShown = now
}

// HistoryStore persists per-user recommendation histories. Implementations
// may be process-local or distributed; callers treat the store as
// best-effort session state.
type HistoryStore interface {
	Get(ctx context.Context, userID uuid.UUID) (History, error)
	Put(ctx context.Context, userID uuid.UUID, history History) error
	PruneIdle(ctx context.Context, now time.Time) int
}

// MemoryHistoryStore keeps histories in process memory. State is lost on
// restart, matching the session-scoped nature of the data.
type MemoryHistoryStore struct {
	histories map[uuid.UUID]History
	mu        sync.RWMutex
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		histories: make(map[uuid.UUID]History),
	}
}

func (s *MemoryHistoryStore) Get(_ context.Context, userID uuid.UUID) (History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.histories[userID], nil
}

func (s *MemoryHistoryStore) Put(_ context.Context, userID uuid.UUID, history History) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories[userID] = history
	return nil
}

// PruneIdle drops histories whose idle window has already expired; they would
// be reset on next use anyway. Returns the number of entries removed.
func (s *MemoryHistoryStore) PruneIdle(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for userID, history := range s.histories {
		if now.Sub(history.LastShown) > HistoryIdleReset {
			delete(s.histories, userID)
			pruned++
		}
	}

	return pruned
}

// CacheHistoryStore keeps histories in the session cache so multiple
// instances share the same view. Entries expire on the idle interval.
type CacheHistoryStore struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewCacheHistoryStore(cache database.CacheClient) *CacheHistoryStore {
	return &CacheHistoryStore{
		cache: cache,
		log:   logger.New("cacheHistoryStore"),
	}
}

func (s *CacheHistoryStore) Get(ctx context.Context, userID uuid.UUID) (History, error) {
	var history History
	found, err := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(historyCachePrefix).
		Get(&history)
	if err != nil {
		return History{}, s.log.Function("Get").
			Err("failed to get history from cache", err, "userID", userID)
	}

	if !found {
		return History{}, nil
	}

	return history, nil
}

func (s *CacheHistoryStore) Put(ctx context.Context, userID uuid.UUID, history History) error {
	err := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(historyCachePrefix).
		WithStruct(history).
		WithTTL(HistoryIdleReset).
		Set()
	if err != nil {
		return s.log.Function("Put").
			Err("failed to set history in cache", err, "userID", userID)
	}

	return nil
}

// PruneIdle is a no-op for the cache store; the TTL handles expiry.
func (s *CacheHistoryStore) PruneIdle(context.Context, time.Time) int {
	return 0
}
