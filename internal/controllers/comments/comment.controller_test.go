package commentController

import (
	"context"
	"testing"
	"wellread/internal/apperrors"
	notificationController "wellread/internal/controllers/notifications"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
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

type fakeCommentRepo struct {
	byID       *Comment
	created    *Comment
	deleted    bool
	listLimit  int
	listOffset int

	hasLike     bool
	likeCreated bool
	likeRemoved bool
	likeCount   int64
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *Comment) error {
	f.created = comment
	return nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	return f.byID, nil
}

func (f *fakeCommentRepo) ListForReview(
	ctx context.Context,
	reviewID, viewerID uuid.UUID,
	limit, offset int,
) ([]CommentWithAuthor, error) {
	f.listLimit = limit
	f.listOffset = offset
	return nil, nil
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = true
	return nil
}

func (f *fakeCommentRepo) HasLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, commentID uuid.UUID,
) (bool, error) {
	return f.hasLike, nil
}

func (f *fakeCommentRepo) CreateLike(ctx context.Context, tx *gorm.DB, userID, commentID uuid.UUID) error {
	f.likeCreated = true
	return nil
}

func (f *fakeCommentRepo) DeleteLike(ctx context.Context, tx *gorm.DB, userID, commentID uuid.UUID) error {
	f.likeRemoved = true
	return nil
}

func (f *fakeCommentRepo) CountLikes(ctx context.Context, tx *gorm.DB, commentID uuid.UUID) (int64, error) {
	return f.likeCount, nil
}

type fakeCommentNotifier struct {
	sent []notificationController.NotificationInput
}

func (f *fakeCommentNotifier) Notify(
	ctx context.Context,
	input notificationController.NotificationInput,
) {
	f.sent = append(f.sent, input)
}

func (f *fakeCommentNotifier) List(
	ctx context.Context,
	userID uuid.UUID,
	page int,
) ([]NotificationWithSender, error) {
	return nil, nil
}

func (f *fakeCommentNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeCommentNotifier) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (f *fakeCommentNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) error { return nil }

type fakeCommentReviewRepo struct {
	byID *Review
}

func (f *fakeCommentReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *Review) error {
	return nil
}

func (f *fakeCommentReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	return f.byID, nil
}

func (f *fakeCommentReviewRepo) GetByUserAndBook(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	bookID string,
) (*Review, error) {
	return nil, nil
}

func (f *fakeCommentReviewRepo) GetByBook(ctx context.Context, bookID string) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeCommentReviewRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeCommentReviewRepo) GetRecent(ctx context.Context, limit int) ([]ReviewWithBook, error) {
	return nil, nil
}

func (f *fakeCommentReviewRepo) Update(ctx context.Context, review *Review) error { return nil }

func (f *fakeCommentReviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

func (f *fakeCommentReviewRepo) CountForBook(
	ctx context.Context,
	tx *gorm.DB,
	bookID string,
	source BookSource,
) (int64, error) {
	return 0, nil
}

func (f *fakeCommentReviewRepo) Stats(ctx context.Context, bookID string) (BookStats, error) {
	return BookStats{}, nil
}

func (f *fakeCommentReviewRepo) StatsForKeys(
	ctx context.Context,
	bookIDs []string,
) (map[string]BookStats, error) {
	return map[string]BookStats{}, nil
}

func (f *fakeCommentReviewRepo) CreateLike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error {
	return nil
}

func (f *fakeCommentReviewRepo) DeleteLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	return false, nil
}

func (f *fakeCommentReviewRepo) CreateUnlike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error {
	return nil
}

func (f *fakeCommentReviewRepo) DeleteUnlike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	return false, nil
}

func (f *fakeCommentReviewRepo) GetLikeStatus(
	ctx context.Context,
	userID, reviewID uuid.UUID,
) (ReviewLikeStatus, error) {
	return ReviewLikeStatus{}, nil
}

func newTestCommentController(
	comments *fakeCommentRepo,
	reviews *fakeCommentReviewRepo,
) (*CommentController, *fakeCommentNotifier) {
	notifier := &fakeCommentNotifier{}
	return &CommentController{
		commentRepo:   comments,
		reviewRepo:    reviews,
		notifications: notifier,
		transaction:   passthroughTx{},
		log:           logger.New("commentController"),
	}, notifier
}

func commentUser() *User {
	user := &User{Username: "reader", IsActive: true}
	user.ID = uuid.New()
	return user
}

func TestPost_RequiresText(t *testing.T) {
	cc, _ := newTestCommentController(&fakeCommentRepo{}, &fakeCommentReviewRepo{})

	_, err := cc.Post(context.Background(), commentUser(), uuid.New(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPost_MissingReview(t *testing.T) {
	cc, _ := newTestCommentController(&fakeCommentRepo{}, &fakeCommentReviewRepo{})

	_, err := cc.Post(context.Background(), commentUser(), uuid.New(), "nice review")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPost_TrimsAndCreates(t *testing.T) {
	review := &Review{}
	review.ID = uuid.New()

	comments := &fakeCommentRepo{}
	cc, _ := newTestCommentController(comments, &fakeCommentReviewRepo{byID: review})

	user := commentUser()
	comment, err := cc.Post(context.Background(), user, review.ID, "  nice review  ")
	require.NoError(t, err)

	assert.Equal(t, "nice review", comment.Text)
	assert.Equal(t, user.ID, comment.UserID)
	assert.Equal(t, review.ID, comment.ReviewID)
	require.NotNil(t, comments.created)
}

func TestGetComments_ClampsPage(t *testing.T) {
	comments := &fakeCommentRepo{}
	cc, _ := newTestCommentController(comments, &fakeCommentReviewRepo{})

	_, err := cc.GetComments(context.Background(), uuid.New(), uuid.New(), -2)
	require.NoError(t, err)
	assert.Equal(t, 20, comments.listLimit)
	assert.Equal(t, 0, comments.listOffset)

	_, err = cc.GetComments(context.Background(), uuid.New(), uuid.New(), 2)
	require.NoError(t, err)
	assert.Equal(t, 20, comments.listOffset)
}

func TestToggleLike_MissingComment(t *testing.T) {
	cc, _ := newTestCommentController(&fakeCommentRepo{}, &fakeCommentReviewRepo{})

	_, err := cc.ToggleLike(context.Background(), commentUser(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestToggleLike_AddsLikeAndNotifiesAuthor(t *testing.T) {
	author := commentUser()
	comment := &Comment{UserID: author.ID, Text: "mine"}
	comment.ID = uuid.New()

	comments := &fakeCommentRepo{byID: comment, likeCount: 3}
	cc, notifier := newTestCommentController(comments, &fakeCommentReviewRepo{})

	liker := commentUser()
	result, err := cc.ToggleLike(context.Background(), liker, comment.ID)
	require.NoError(t, err)

	assert.True(t, result.Liked)
	assert.Equal(t, 3, result.LikesCount)
	assert.True(t, comments.likeCreated)
	assert.False(t, comments.likeRemoved)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, author.ID, notifier.sent[0].ReceiverID)
	assert.Equal(t, NotificationLikeComment, notifier.sent[0].Type)
}

func TestToggleLike_RemovesExistingLike(t *testing.T) {
	author := commentUser()
	comment := &Comment{UserID: author.ID, Text: "mine"}
	comment.ID = uuid.New()

	comments := &fakeCommentRepo{byID: comment, hasLike: true}
	cc, notifier := newTestCommentController(comments, &fakeCommentReviewRepo{})

	result, err := cc.ToggleLike(context.Background(), commentUser(), comment.ID)
	require.NoError(t, err)

	assert.False(t, result.Liked)
	assert.True(t, comments.likeRemoved)
	assert.False(t, comments.likeCreated)
	assert.Empty(t, notifier.sent)
}

func TestToggleLike_SelfLikeDoesNotNotify(t *testing.T) {
	author := commentUser()
	comment := &Comment{UserID: author.ID, Text: "mine"}
	comment.ID = uuid.New()

	comments := &fakeCommentRepo{byID: comment}
	cc, notifier := newTestCommentController(comments, &fakeCommentReviewRepo{})

	result, err := cc.ToggleLike(context.Background(), author, comment.ID)
	require.NoError(t, err)

	assert.True(t, result.Liked)
	assert.Empty(t, notifier.sent)
}

func TestDelete_MissingComment(t *testing.T) {
	cc, _ := newTestCommentController(&fakeCommentRepo{}, &fakeCommentReviewRepo{})

	err := cc.Delete(context.Background(), commentUser(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	owner := commentUser()
	comment := &Comment{UserID: owner.ID, Text: "mine"}
	comment.ID = uuid.New()

	comments := &fakeCommentRepo{byID: comment}
	cc, _ := newTestCommentController(comments, &fakeCommentReviewRepo{})

	err := cc.Delete(context.Background(), commentUser(), comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.False(t, comments.deleted)
}

func TestDelete_OwnerSucceeds(t *testing.T) {
	owner := commentUser()
	comment := &Comment{UserID: owner.ID, Text: "mine"}
	comment.ID = uuid.New()

	comments := &fakeCommentRepo{byID: comment}
	cc, _ := newTestCommentController(comments, &fakeCommentReviewRepo{})

	err := cc.Delete(context.Background(), owner, comment.ID)
	require.NoError(t, err)
	assert.True(t, comments.deleted)
}
