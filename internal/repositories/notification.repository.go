package repositories

import (
	"context"
	"time"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	List(
		ctx context.Context,
		receiverID uuid.UUID,
		limit, offset int,
	) ([]NotificationWithSender, error)
	UnreadCount(ctx context.Context, receiverID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, receiverID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, receiverID uuid.UUID) error
	PurgeReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewNotificationRepository(db database.DB) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *Notification) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(notification).Error; err != nil {
		return log.Err("failed to create notification", err, "type", notification.Type)
	}

	return nil
}

func (r *notificationRepository) List(
	ctx context.Context,
	receiverID uuid.UUID,
	limit, offset int,
) ([]NotificationWithSender, error) {
	log := r.log.Function("List")

	var notifications []NotificationWithSender
	err := r.db.SQLWithContext(ctx).
		Table("notifications").
		Select(`
			notifications.*,
			users.username AS sender_username,
			users.profile_img AS sender_profile_img`).
		Joins("JOIN users ON users.id = notifications.sender_id").
		Where("notifications.receiver_id = ?", receiverID).
		Order("notifications.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&notifications).Error
	if err != nil {
		return nil, log.Err("failed to list notifications", err, "receiverID", receiverID)
	}

	return notifications, nil
}

func (r *notificationRepository) UnreadCount(
	ctx context.Context,
	receiverID uuid.UUID,
) (int64, error) {
	log := r.log.Function("UnreadCount")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("receiver_id = ? AND is_read = false", receiverID).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count unread notifications", err, "receiverID", receiverID)
	}

	return count, nil
}

// MarkRead flips is_read for one notification owned by receiverID. The
// transition is one-way; marking an already-read notification is a no-op.
func (r *notificationRepository) MarkRead(
	ctx context.Context,
	id, receiverID uuid.UUID,
) (bool, error) {
	log := r.log.Function("MarkRead")

	result := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Update("is_read", true)
	if result.Error != nil {
		return false, log.Err("failed to mark notification read", result.Error, "id", id)
	}

	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	log := r.log.Function("MarkAllRead")

	err := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("receiver_id = ? AND is_read = false", receiverID).
		Update("is_read", true).Error
	if err != nil {
		return log.Err("failed to mark all notifications read", err, "receiverID", receiverID)
	}

	return nil
}

func (r *notificationRepository) PurgeReadOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	log := r.log.Function("PurgeReadOlderThan")

	result := r.db.SQLWithContext(ctx).
		Where("is_read = true AND created_at < ?", cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, log.Err("failed to purge read notifications", result.Error)
	}

	return result.RowsAffected, nil
}
