package models

import (
	"github.com/google/uuid"
)

// Follower is a directed follow edge. Self-follows are rejected before the
// insert; the composite unique index guards concurrent duplicates.
type Follower struct {
	BaseModel
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_pair" json:"followerId"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follower_pair" json:"followingId"`
}

// FollowEntry is the listing projection for follower/following pages.
type FollowEntry struct {
	UserID         uuid.UUID `json:"userId"`
	Username       string    `json:"username"`
	ProfileImg     *string   `json:"profileImg,omitempty"`
	IsFollowingYou bool      `json:"isFollowingYou"`
}
