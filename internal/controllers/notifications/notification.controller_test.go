package notificationController

import (
	"context"
	"testing"
	"time"
	"wellread/internal/apperrors"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	created    []Notification
	createErr  error
	listLimit  int
	listOffset int
	markedRead bool
	markAll    bool
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationRepo) List(
	ctx context.Context,
	receiverID uuid.UUID,
	limit, offset int,
) ([]NotificationWithSender, error) {
	f.listLimit = limit
	f.listOffset = offset
	return nil, nil
}

func (f *fakeNotificationRepo) UnreadCount(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	return 4, nil
}

func (f *fakeNotificationRepo) MarkRead(
	ctx context.Context,
	id, receiverID uuid.UUID,
) (bool, error) {
	return f.markedRead, nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	f.markAll = true
	return nil
}

func (f *fakeNotificationRepo) PurgeReadOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	return 0, nil
}

func newTestNotificationController(repo *fakeNotificationRepo) *NotificationController {
	return &NotificationController{
		notificationRepo: repo,
		log:              logger.New("notificationController"),
	}
}

func TestNotify_PersistFailureIsSwallowed(t *testing.T) {
	repo := &fakeNotificationRepo{createErr: assert.AnError}
	nc := newTestNotificationController(repo)

	// Must not panic or surface the error to the caller.
	nc.Notify(context.Background(), NotificationInput{
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Type:       NotificationFollow,
		Message:    "alice started following you",
	})

	assert.Empty(t, repo.created)
}

func TestList_ClampsPage(t *testing.T) {
	repo := &fakeNotificationRepo{}
	nc := newTestNotificationController(repo)

	_, err := nc.List(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 25, repo.listLimit)
	assert.Equal(t, 0, repo.listOffset)

	_, err = nc.List(context.Background(), uuid.New(), 3)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.listOffset)
}

func TestUnreadCount(t *testing.T) {
	nc := newTestNotificationController(&fakeNotificationRepo{})

	count, err := nc.UnreadCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestMarkRead_NotFound(t *testing.T) {
	nc := newTestNotificationController(&fakeNotificationRepo{markedRead: false})

	err := nc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkRead_Succeeds(t *testing.T) {
	nc := newTestNotificationController(&fakeNotificationRepo{markedRead: true})

	err := nc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
}

func TestMarkAllRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	nc := newTestNotificationController(repo)

	require.NoError(t, nc.MarkAllRead(context.Background(), uuid.New()))
	assert.True(t, repo.markAll)
}
