package models

import (
	"github.com/lib/pq"
)

type User struct {
	BaseUUIDModel
	Username       string         `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Bio            *string        `gorm:"type:text"                      json:"bio,omitempty"`
	ProfileImg     *string        `gorm:"type:text"                      json:"profileImg,omitempty"`
	FavoriteGenres pq.StringArray `gorm:"type:text[]"                    json:"favoriteGenres"`
	IsAdmin        bool           `gorm:"type:bool;default:false"        json:"isAdmin"`
	IsActive       bool           `gorm:"type:bool;default:true"         json:"isActive"`
}

// UserProfile is the public projection of a user, safe to return to any
// authenticated caller.
type UserProfile struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Bio            *string  `json:"bio,omitempty"`
	ProfileImg     *string  `json:"profileImg,omitempty"`
	FavoriteGenres []string `json:"favoriteGenres"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:             u.ID.String(),
		Username:       u.Username,
		Bio:            u.Bio,
		ProfileImg:     u.ProfileImg,
		FavoriteGenres: u.FavoriteGenres,
	}
}

// ProfileUpdateRequest carries the mutable profile fields. FavoriteGenres
// arrives as a JSON array and is validated before persisting.
type ProfileUpdateRequest struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Bio            *string  `json:"bio"`
	ProfileImg     *string  `json:"profileImg"`
	FavoriteGenres []string `json:"favoriteGenres"`
}
