package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Review is owned by its author. At most one review exists per
// (user_id, book_id) pair, enforced by the composite unique index plus a
// read-then-write check in the controller.
type Review struct {
	BaseUUIDModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_user_book" json:"userId"`
	User       *User      `gorm:"foreignKey:UserID"                                   json:"user,omitempty"`
	BookID     string     `gorm:"type:text;not null;uniqueIndex:idx_review_user_book" json:"bookId"`
	BookSource BookSource `gorm:"type:text;not null"                                  json:"bookSource"`
	Rating     int        `gorm:"type:int;not null"                                   json:"rating"`
	ReviewText string     `gorm:"type:text;not null"                                  json:"reviewText"`
}

// ReviewLike and ReviewUnlike are mutually exclusive per (user, review):
// inserting one deletes the other inside the same transaction.
type ReviewLike struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_like_user" json:"userId"`
	ReviewID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_like_user" json:"reviewId"`
}

type ReviewUnlike struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_unlike_user" json:"userId"`
	ReviewID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_unlike_user" json:"reviewId"`
}

// ReviewWithBook joins a review with its resolved book metadata and author
// info for feed and detail views. Genre must stay pq.StringArray so the
// joined text[] column scans.
type ReviewWithBook struct {
	Review
	Username   string         `json:"username"`
	ProfileImg *string        `json:"profileImg,omitempty"`
	Title      string         `json:"title"`
	Author     string         `json:"author"`
	CoverImg   *string        `json:"coverImg,omitempty"`
	Genre      pq.StringArray `gorm:"type:text[]" json:"genre"`
}

// ReviewLikeStatus reports the caller's reaction to a review.
type ReviewLikeStatus struct {
	Liked   bool `json:"liked"`
	Unliked bool `json:"unliked"`
}

type CreateReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"reviewText"`
}
