package reviewController

import (
	"context"
	"testing"
	"wellread/internal/apperrors"
	bookController "wellread/internal/controllers/books"
	notificationController "wellread/internal/controllers/notifications"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// passthroughTx runs the transactional function directly, without a database.
type passthroughTx struct{}

func (passthroughTx) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	return fn(ctx, nil)
}

type fakeReviewRepo struct {
	byID     *Review
	existing *Review
	updated  *Review

	created   *Review
	createErr error

	remaining int64
	deletedID uuid.UUID

	likeCreates   int
	likeCreateErr error
	likeDeletes   int
	likeDeleted   bool

	unlikeCreates int
	unlikeDeletes int
	unlikeGone    bool
}

func (f *fakeReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = review
	return nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	return f.byID, nil
}

func (f *fakeReviewRepo) GetByUserAndBook(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	bookID string,
) (*Review, error) {
	return f.existing, nil
}

func (f *fakeReviewRepo) GetByBook(ctx context.Context, bookID string) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeReviewRepo) GetRecent(ctx context.Context, limit int) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *Review) error {
	f.updated = review
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.deletedID = id
	return nil
}

func (f *fakeReviewRepo) CountForBook(
	ctx context.Context,
	tx *gorm.DB,
	bookID string,
	source BookSource,
) (int64, error) {
	return f.remaining, nil
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
	if f.likeCreateErr != nil {
		return f.likeCreateErr
	}
	f.likeCreates++
	return nil
}

func (f *fakeReviewRepo) DeleteLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	f.likeDeletes++
	return f.likeDeleted, nil
}

func (f *fakeReviewRepo) CreateUnlike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error {
	f.unlikeCreates++
	return nil
}

func (f *fakeReviewRepo) DeleteUnlike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	f.unlikeDeletes++
	return f.unlikeGone, nil
}

func (f *fakeReviewRepo) GetLikeStatus(
	ctx context.Context,
	userID, reviewID uuid.UUID,
) (ReviewLikeStatus, error) {
	return ReviewLikeStatus{Liked: true}, nil
}

type fakeReviewedBookRepo struct {
	inserted      *ReviewedBook
	deleted       bool
	deletedKey    string
	deletedSource BookSource
}

func (f *fakeReviewedBookRepo) GetByKey(ctx context.Context, bookKey string) (*ReviewedBook, error) {
	return nil, nil
}

func (f *fakeReviewedBookRepo) Insert(ctx context.Context, tx *gorm.DB, book *ReviewedBook) error {
	f.inserted = book
	return nil
}

func (f *fakeReviewedBookRepo) Delete(
	ctx context.Context,
	tx *gorm.DB,
	bookKey string,
	source BookSource,
) error {
	f.deleted = true
	f.deletedKey = bookKey
	f.deletedSource = source
	return nil
}

func (f *fakeReviewedBookRepo) GetByGenres(
	ctx context.Context,
	genres []string,
	excludeKeys []string,
	limit int,
) ([]ReviewedBook, error) {
	return nil, nil
}

func (f *fakeReviewedBookRepo) GetRandom(
	ctx context.Context,
	excludeKeys []string,
	limit int,
) ([]ReviewedBook, error) {
	return nil, nil
}

type fakeResolver struct {
	details *BookDetails
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, bookKey string) (*BookDetails, error) {
	return f.details, f.err
}

func (f *fakeResolver) GetBookDetails(
	ctx context.Context,
	bookKey string,
) (*bookController.BookWithStats, error) {
	return nil, nil
}

func (f *fakeResolver) Search(ctx context.Context, query string) ([]BookDetails, error) {
	return nil, nil
}

func (f *fakeResolver) CreateCustomBook(
	ctx context.Context,
	user *User,
	request bookController.CreateCustomBookRequest,
) (*CustomBook, error) {
	return nil, nil
}

func (f *fakeResolver) ListCustomBooks(ctx context.Context, user *User) ([]CustomBook, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent []notificationController.NotificationInput
}

func (f *fakeNotifier) Notify(ctx context.Context, input notificationController.NotificationInput) {
	f.sent = append(f.sent, input)
}

func (f *fakeNotifier) List(
	ctx context.Context,
	userID uuid.UUID,
	page int,
) ([]NotificationWithSender, error) {
	return nil, nil
}

func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) error { return nil }

type reviewFixture struct {
	controller *ReviewController
	reviews    *fakeReviewRepo
	books      *fakeReviewedBookRepo
	resolver   *fakeResolver
	notifier   *fakeNotifier
}

func newReviewFixture(reviews *fakeReviewRepo) *reviewFixture {
	books := &fakeReviewedBookRepo{}
	resolver := &fakeResolver{}
	notifier := &fakeNotifier{}

	return &reviewFixture{
		controller: &ReviewController{
			reviewRepo:       reviews,
			reviewedBookRepo: books,
			books:            resolver,
			notifications:    notifier,
			transaction:      passthroughTx{},
			log:              logger.New("reviewController"),
		},
		reviews:  reviews,
		books:    books,
		resolver: resolver,
		notifier: notifier,
	}
}

func testUser() *User {
	user := &User{Username: "reader", IsActive: true}
	user.ID = uuid.New()
	return user
}

func resolvedDetails() *BookDetails {
	return &BookDetails{
		BookKey: "OL1W",
		Title:   "A Wizard of Earthsea",
		Author:  "Ursula K. Le Guin",
		Genre:   []string{"fantasy"},
		Source:  SourceAPI,
	}
}

func TestCreate_RejectsRatingOutOfRange(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{})
	user := testUser()

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := f.controller.Create(context.Background(), user, "OL1W", CreateReviewRequest{
			Rating:     rating,
			ReviewText: "Fine book",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "rating %d", rating)
	}
}

func TestCreate_RejectsEmptyText(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{})
	user := testUser()

	_, err := f.controller.Create(context.Background(), user, "OL1W", CreateReviewRequest{
		Rating:     3,
		ReviewText: "   ",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreate_SecondReviewForSameBookIsConflict(t *testing.T) {
	user := testUser()
	existing := &Review{UserID: user.ID, BookID: "OL1W", Rating: 4}
	existing.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{existing: existing})
	f.resolver.details = resolvedDetails()

	_, err := f.controller.Create(context.Background(), user, "OL1W", CreateReviewRequest{
		Rating:     5,
		ReviewText: "Again",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, f.reviews.created)
	assert.Nil(t, f.books.inserted)
}

func TestCreate_ConcurrentDuplicateSurfacesAsConflict(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{createErr: &pq.Error{Code: "23505"}})
	f.resolver.details = resolvedDetails()

	_, err := f.controller.Create(context.Background(), testUser(), "OL1W", CreateReviewRequest{
		Rating:     5,
		ReviewText: "Racing myself",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreate_SnapshotsResolvedBook(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{})
	f.resolver.details = resolvedDetails()

	user := testUser()
	review, err := f.controller.Create(context.Background(), user, "OL1W", CreateReviewRequest{
		Rating:     5,
		ReviewText: "Loved it",
	})
	require.NoError(t, err)

	assert.Equal(t, "OL1W", review.BookID)
	assert.Equal(t, SourceAPI, review.BookSource)
	require.NotNil(t, f.reviews.created)

	require.NotNil(t, f.books.inserted)
	assert.Equal(t, "OL1W", f.books.inserted.BookKey)
	assert.Equal(t, "A Wizard of Earthsea", f.books.inserted.Title)
	assert.Equal(t, pq.StringArray{"fantasy"}, f.books.inserted.Genre)
	assert.Equal(t, SourceAPI, f.books.inserted.Source)
}

func TestUpdate_OwnerCanEdit(t *testing.T) {
	user := testUser()
	review := &Review{UserID: user.ID, Rating: 2, ReviewText: "meh"}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review})

	updated, err := f.controller.Update(context.Background(), user, review.ID, CreateReviewRequest{
		Rating:     5,
		ReviewText: "Grew on me",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Grew on me", updated.ReviewText)
	require.NotNil(t, f.reviews.updated)
	assert.Equal(t, review.ID, f.reviews.updated.ID)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	owner := testUser()
	review := &Review{UserID: owner.ID, Rating: 2, ReviewText: "meh"}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review})

	intruder := testUser()
	_, err := f.controller.Update(context.Background(), intruder, review.ID, CreateReviewRequest{
		Rating:     1,
		ReviewText: "sabotage",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdate_MissingReview(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{})

	_, err := f.controller.Update(context.Background(), testUser(), uuid.New(), CreateReviewRequest{
		Rating:     3,
		ReviewText: "fine",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_LastReviewRemovesSnapshot(t *testing.T) {
	user := testUser()
	review := &Review{UserID: user.ID, BookID: "OL1W", BookSource: SourceAPI}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review, remaining: 0})

	require.NoError(t, f.controller.Delete(context.Background(), user, review.ID))

	assert.Equal(t, review.ID, f.reviews.deletedID)
	assert.True(t, f.books.deleted)
	assert.Equal(t, "OL1W", f.books.deletedKey)
	assert.Equal(t, SourceAPI, f.books.deletedSource)
}

func TestDelete_RemainingReviewsKeepSnapshot(t *testing.T) {
	user := testUser()
	review := &Review{UserID: user.ID, BookID: "OL1W", BookSource: SourceAPI}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review, remaining: 2})

	require.NoError(t, f.controller.Delete(context.Background(), user, review.ID))

	assert.Equal(t, review.ID, f.reviews.deletedID)
	assert.False(t, f.books.deleted)
}

func TestLike_RemovesOpposingUnlike(t *testing.T) {
	owner := testUser()
	review := &Review{UserID: owner.ID}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review})

	liker := testUser()
	require.NoError(t, f.controller.Like(context.Background(), liker, review.ID))

	assert.Equal(t, 1, f.reviews.unlikeDeletes)
	assert.Equal(t, 1, f.reviews.likeCreates)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, owner.ID, f.notifier.sent[0].ReceiverID)
	assert.Equal(t, NotificationLikeReview, f.notifier.sent[0].Type)
}

func TestLike_DuplicateIsConflict(t *testing.T) {
	review := &Review{UserID: uuid.New()}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review, likeCreateErr: &pq.Error{Code: "23505"}})

	err := f.controller.Like(context.Background(), testUser(), review.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, f.notifier.sent)
}

func TestUnlike_RemovesOpposingLike(t *testing.T) {
	owner := testUser()
	review := &Review{UserID: owner.ID}
	review.ID = uuid.New()

	f := newReviewFixture(&fakeReviewRepo{byID: review})

	require.NoError(t, f.controller.Unlike(context.Background(), testUser(), review.ID))

	assert.Equal(t, 1, f.reviews.likeDeletes)
	assert.Equal(t, 1, f.reviews.unlikeCreates)
}

func TestRemoveLike_NotFoundWhenNothingDeleted(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{likeDeleted: false})

	err := f.controller.RemoveLike(context.Background(), testUser(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveLike_Succeeds(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{likeDeleted: true})

	err := f.controller.RemoveLike(context.Background(), testUser(), uuid.New())
	assert.NoError(t, err)
}

func TestRemoveUnlike_NotFoundWhenNothingDeleted(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{unlikeGone: false})

	err := f.controller.RemoveUnlike(context.Background(), testUser(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetLikeStatus_PassesThrough(t *testing.T) {
	f := newReviewFixture(&fakeReviewRepo{})

	status, err := f.controller.GetLikeStatus(context.Background(), testUser(), uuid.New())
	require.NoError(t, err)
	assert.True(t, status.Liked)
	assert.False(t, status.Unliked)
}
