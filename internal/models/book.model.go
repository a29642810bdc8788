package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookSource identifies which catalog a book key belongs to. A book key is
// unique within a source; the pair is globally unique.
type BookSource string

const (
	SourceAPI    BookSource = "api"
	SourceCustom BookSource = "custom"
)

// MaxGenres caps the genre list carried on any book record.
const MaxGenres = 4

// ReviewedBook is the write-once snapshot of book metadata, materialized the
// first time a book is reviewed. It is never refreshed from the upstream
// catalog and is deleted when its last review is removed.
type ReviewedBook struct {
	BookKey     string         `gorm:"type:text;primaryKey"                                json:"bookKey"`
	Title       string         `gorm:"type:text;not null"                                  json:"title"`
	Author      string         `gorm:"type:text;not null"                                  json:"author"`
	CoverImg    *string        `gorm:"type:text"                                           json:"coverImg,omitempty"`
	Genre       pq.StringArray `gorm:"type:text[];index:idx_reviewed_books_genre,type:gin" json:"genre"`
	Description *string        `gorm:"type:text"                                           json:"description,omitempty"`
	Source      BookSource     `gorm:"type:text;not null"                                  json:"source"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"                                      json:"createdAt"`
}

// CustomBook is an admin-curated catalog entry with a lifecycle independent
// of reviews.
type CustomBook struct {
	BaseUUIDModel
	BookKey     string         `gorm:"type:text;uniqueIndex;not null"                    json:"bookKey"`
	Title       string         `gorm:"type:text;not null"                                json:"title"`
	Author      string         `gorm:"type:text;not null"                                json:"author"`
	CoverImg    *string        `gorm:"type:text"                                         json:"coverImg,omitempty"`
	Genre       pq.StringArray `gorm:"type:text[];index:idx_custom_books_genre,type:gin" json:"genre"`
	Description *string        `gorm:"type:text"                                         json:"description,omitempty"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null"                                json:"createdBy"`
}

// BookDetails is the source-independent resolved identity of a book.
type BookDetails struct {
	BookKey     string     `json:"bookKey"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	CoverImg    *string    `json:"coverImg,omitempty"`
	Genre       []string   `json:"genre"`
	Description *string    `json:"description,omitempty"`
	Source      BookSource `json:"source"`
}

// BookCandidate is a BookDetails annotated for recommendation output.
type BookCandidate struct {
	BookDetails
	AvgRating   *float64 `json:"avgRating"`
	ReviewCount int      `json:"reviewCount"`
	IsNew       bool     `json:"isNew"`
}

// BookStats aggregates review volume and rating for one book.
type BookStats struct {
	Count     int     `json:"count"`
	AvgRating float64 `json:"avgRating"`
}

func (b *ReviewedBook) ToDetails() BookDetails {
	return BookDetails{
		BookKey:     b.BookKey,
		Title:       b.Title,
		Author:      b.Author,
		CoverImg:    b.CoverImg,
		Genre:       truncateGenres(b.Genre),
		Description: b.Description,
		Source:      b.Source,
	}
}

func (b *CustomBook) ToDetails() BookDetails {
	return BookDetails{
		BookKey:     b.BookKey,
		Title:       b.Title,
		Author:      b.Author,
		CoverImg:    b.CoverImg,
		Genre:       truncateGenres(b.Genre),
		Description: b.Description,
		Source:      SourceCustom,
	}
}

func truncateGenres(genres []string) []string {
	if len(genres) > MaxGenres {
		return genres[:MaxGenres]
	}
	return genres
}
