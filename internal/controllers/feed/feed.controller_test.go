package feedController

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	. "wellread/internal/models"
	"wellread/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReviewRepo struct {
	recent []ReviewWithBook
	err    error
}

func (f *fakeReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *Review) error { return nil }

func (f *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetByUserAndBook(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	bookID string,
) (*Review, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetByBook(ctx context.Context, bookID string) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetRecent(ctx context.Context, limit int) ([]ReviewWithBook, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *Review) error { return nil }

func (f *fakeReviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error { return nil }

func (f *fakeReviewRepo) CountForBook(
	ctx context.Context,
	tx *gorm.DB,
	bookID string,
	source BookSource,
) (int64, error) {
	return 0, nil
}

func (f *fakeReviewRepo) Stats(ctx context.Context, bookID string) (BookStats, error) {
	return BookStats{}, nil
}

func (f *fakeReviewRepo) StatsForKeys(
	ctx context.Context,
	bookIDs []string,
) (map[string]BookStats, error) {
	return map[string]BookStats{}, nil
}

func (f *fakeReviewRepo) CreateLike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error {
	return nil
}

func (f *fakeReviewRepo) DeleteLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	return false, nil
}

func (f *fakeReviewRepo) CreateUnlike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error {
	return nil
}

func (f *fakeReviewRepo) DeleteUnlike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	return false, nil
}

func (f *fakeReviewRepo) GetLikeStatus(
	ctx context.Context,
	userID, reviewID uuid.UUID,
) (ReviewLikeStatus, error) {
	return ReviewLikeStatus{}, nil
}

func feedReviews(genre string, count int) []ReviewWithBook {
	reviews := make([]ReviewWithBook, 0, count)
	for i := range count {
		review := ReviewWithBook{
			Username: "reader",
			Title:    fmt.Sprintf("%s book %d", genre, i),
			Author:   "Author",
			Genre:    []string{genre},
		}
		review.ID = uuid.New()
		review.Rating = 4
		reviews = append(reviews, review)
	}
	return reviews
}

func newTestFeed(repo *fakeReviewRepo) FeedControllerInterface {
	return NewWithRandom(
		repositories.Repository{Review: repo},
		rand.New(rand.NewSource(1)),
	)
}

func feedUser(genres ...string) *User {
	user := &User{Username: "reader", IsActive: true, FavoriteGenres: genres}
	user.ID = uuid.New()
	return user
}

func TestGetCommunityFeed_NoFilterReturnsRecent(t *testing.T) {
	recent := feedReviews("fiction", 12)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser(), "")
	require.NoError(t, err)

	assert.Len(t, result, 12)
	assert.Equal(t, recent[0].ID, result[0].ID)
}

func TestGetCommunityFeed_FetchCap(t *testing.T) {
	recent := feedReviews("fiction", 45)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser(), "")
	require.NoError(t, err)

	assert.Len(t, result, 30)
}

func TestGetCommunityFeed_FavoriteGenresFilter(t *testing.T) {
	recent := append(feedReviews("fantasy", 9), feedReviews("history", 8)...)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser("fantasy"), "")
	require.NoError(t, err)

	assert.Len(t, result, 9)
	for _, review := range result {
		assert.Contains(t, review.Genre, "fantasy")
	}
}

func TestGetCommunityFeed_ExplicitGenreOverridesFavorites(t *testing.T) {
	recent := append(feedReviews("fantasy", 9), feedReviews("history", 8)...)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser("fantasy"), "history")
	require.NoError(t, err)

	assert.Len(t, result, 8)
	for _, review := range result {
		assert.Contains(t, review.Genre, "history")
	}
}

func TestGetCommunityFeed_FilterTopsUpToMinimum(t *testing.T) {
	recent := append(feedReviews("fantasy", 3), feedReviews("history", 10)...)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser(), "fantasy")
	require.NoError(t, err)

	require.Len(t, result, 7)
	for i := range 3 {
		assert.Contains(t, result[i].Genre, "fantasy")
	}
}

func TestGetCommunityFeed_FilterFewerThanMinimumAvailable(t *testing.T) {
	recent := append(feedReviews("fantasy", 2), feedReviews("history", 2)...)
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser(), "fantasy")
	require.NoError(t, err)

	assert.Len(t, result, 4)
}

func TestGetCommunityFeed_DeduplicatesByID(t *testing.T) {
	recent := feedReviews("fantasy", 4)
	recent = append(recent, recent[0])
	feed := newTestFeed(&fakeReviewRepo{recent: recent})

	result, err := feed.GetCommunityFeed(context.Background(), feedUser(), "fantasy")
	require.NoError(t, err)

	seen := make(map[uuid.UUID]struct{})
	for _, review := range result {
		_, dup := seen[review.ID]
		assert.False(t, dup)
		seen[review.ID] = struct{}{}
	}
}

func TestGetCommunityFeed_RepositoryError(t *testing.T) {
	feed := newTestFeed(&fakeReviewRepo{err: assert.AnError})

	_, err := feed.GetCommunityFeed(context.Background(), feedUser(), "fantasy")
	assert.Error(t, err)
}
