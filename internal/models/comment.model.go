package models

import (
	"github.com/google/uuid"
)

type Comment struct {
	BaseUUIDModel
	ReviewID uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewId"`
	Review   *Review   `gorm:"foreignKey:ReviewID"      json:"-"`
	UserID   uuid.UUID `gorm:"type:uuid;not null"       json:"userId"`
	User     *User     `gorm:"foreignKey:UserID"        json:"user,omitempty"`
	Text     string    `gorm:"type:text;not null"       json:"text"`
}

// CommentLike is a toggleable reaction, one row per (user, comment).
type CommentLike struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_like_user" json:"userId"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_like_user" json:"commentId"`
}

// CommentWithAuthor is the listing projection for a review's comment thread.
type CommentWithAuthor struct {
	Comment
	Username    string  `json:"username"`
	ProfileImg  *string `json:"profileImg,omitempty"`
	LikesCount  int     `json:"likesCount"`
	LikedByUser bool    `json:"likedByUser"`
}

// CommentLikeResult is the outcome of a toggle, computed atomically with the
// state read that produced the decision.
type CommentLikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}
