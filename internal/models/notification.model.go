package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationFollow       NotificationType = "follow"
	NotificationUnfollow     NotificationType = "unfollow"
	NotificationLikeReview   NotificationType = "like_review"
	NotificationUnlikeReview NotificationType = "unlike_review"
	NotificationLikeComment  NotificationType = "like_comment"
)

// Notification is an append-only log row. IsRead transitions once,
// false to true, and never reverses.
type Notification struct {
	BaseUUIDModel
	SenderID   uuid.UUID        `gorm:"type:uuid;not null"       json:"senderId"`
	Sender     *User            `gorm:"foreignKey:SenderID"      json:"sender,omitempty"`
	ReceiverID uuid.UUID        `gorm:"type:uuid;not null;index" json:"receiverId"`
	Type       NotificationType `gorm:"type:text;not null"       json:"type"`
	Message    string           `gorm:"type:text;not null"       json:"message"`
	TargetType *string          `gorm:"type:text"                json:"targetType,omitempty"`
	TargetID   *string          `gorm:"type:text"                json:"targetId,omitempty"`
	Data       datatypes.JSON   `gorm:"type:jsonb"               json:"data,omitempty"`
	IsRead     bool             `gorm:"type:bool;default:false"  json:"isRead"`
}

// NotificationWithSender carries sender display fields for listings.
type NotificationWithSender struct {
	Notification
	SenderUsername   string  `json:"senderUsername"`
	SenderProfileImg *string `json:"senderProfileImg,omitempty"`
}
