package notificationController

import (
	"context"
	"encoding/json"
	"time"
	"wellread/internal/apperrors"
	"wellread/internal/events"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"

	"github.com/google/uuid"
)

const notificationPageSize = 25

// NotificationInput describes one notification to dispatch.
type NotificationInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Type       NotificationType
	Message    string
	TargetType *string
	TargetID   *string
	Data       map[string]any
}

type NotificationController struct {
	notificationRepo repositories.NotificationRepository
	eventBus         *events.EventBus
	log              logger.Logger
}

type NotificationControllerInterface interface {
	// Notify persists and pushes a notification. Failures are logged and
	// swallowed; a notification must never fail the action that caused it.
	Notify(ctx context.Context, input NotificationInput)

	List(ctx context.Context, userID uuid.UUID, page int) ([]NotificationWithSender, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

func New(
	repos repositories.Repository,
	eventBus *events.EventBus,
) NotificationControllerInterface {
	return &NotificationController{
		notificationRepo: repos.Notification,
		eventBus:         eventBus,
		log:              logger.New("notificationController"),
	}
}

func (nc *NotificationController) Notify(ctx context.Context, input NotificationInput) {
	log := nc.log.Function("Notify")

	notification := &Notification{
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Type:       input.Type,
		Message:    input.Message,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
	}

	if input.Data != nil {
		data, err := json.Marshal(input.Data)
		if err != nil {
			log.Warn("failed to marshal notification data", "type", input.Type, "error", err)
		} else {
			notification.Data = data
		}
	}

	if err := nc.notificationRepo.Create(ctx, notification); err != nil {
		log.Warn("failed to persist notification", "type", input.Type, "receiverID", input.ReceiverID, "error", err)
		return
	}

	nc.push(notification)
}

// push fans the persisted notification out to the receiver's live
// connections. Delivery is best effort.
func (nc *NotificationController) push(notification *Notification) {
	log := nc.log.Function("push")

	receiverID := notification.ReceiverID
	err := nc.eventBus.Publish(events.NOTIFICATION_CHANNEL, events.Event{
		Type:   events.NOTIFICATION,
		UserID: &receiverID,
		Data: map[string]any{
			"id":         notification.ID.String(),
			"senderId":   notification.SenderID.String(),
			"type":       string(notification.Type),
			"message":    notification.Message,
			"targetType": notification.TargetType,
			"targetId":   notification.TargetID,
			"createdAt":  notification.CreatedAt.Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Warn("failed to publish notification event", "notificationID", notification.ID, "error", err)
	}
}

func (nc *NotificationController) List(
	ctx context.Context,
	userID uuid.UUID,
	page int,
) ([]NotificationWithSender, error) {
	log := nc.log.Function("List")

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * notificationPageSize

	notifications, err := nc.notificationRepo.List(ctx, userID, notificationPageSize, offset)
	if err != nil {
		return nil, log.Err("failed to list notifications", err, "userID", userID)
	}

	return notifications, nil
}

func (nc *NotificationController) UnreadCount(
	ctx context.Context,
	userID uuid.UUID,
) (int64, error) {
	log := nc.log.Function("UnreadCount")

	count, err := nc.notificationRepo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, log.Err("failed to count unread notifications", err, "userID", userID)
	}

	return count, nil
}

func (nc *NotificationController) MarkRead(
	ctx context.Context,
	userID, notificationID uuid.UUID,
) error {
	log := nc.log.Function("MarkRead")

	updated, err := nc.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return log.Err("failed to mark notification read", err, "notificationID", notificationID)
	}

	if !updated {
		return log.ErrorWithType(
			apperrors.ErrNotFound,
			"notification not found",
			"notificationID", notificationID,
		)
	}

	return nil
}

func (nc *NotificationController) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	log := nc.log.Function("MarkAllRead")

	if err := nc.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return log.Err("failed to mark all notifications read", err, "userID", userID)
	}

	return nil
}
