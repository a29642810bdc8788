// Package apperrors defines the failure taxonomy shared by controllers and
// handlers. Controllers wrap these sentinels (usually via the logger's
// ErrorWithType) and handlers translate them to HTTP statuses.
package apperrors

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput marks missing or malformed request fields. No side
	// effects are attempted once raised.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an absent book, review, user or comment.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks duplicate reviews, follows, likes and any storage
	// unique-key violation surfaced by a concurrent identical request.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks a mutation attempted by a non-owner.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamUnavailable marks a catalog gateway failure. Callers degrade
	// to defaults wherever the upstream is only enrichment; it becomes
	// ErrNotFound when the upstream was the sole identity source.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInternal marks storage or transport faults. Handlers return a
	// generic message and never leak the underlying detail.
	ErrInternal = errors.New("internal error")
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a storage-level unique constraint
// failure. Races between identical concurrent requests surface here and must
// be treated as ErrConflict, not as a generic fault.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	return false
}
