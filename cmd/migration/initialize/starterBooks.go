package initialize

import (
	. "wellread/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func strPtr(s string) *string {
	return &s
}

// getStarterBooks returns the curated catalog shipped with a fresh install so
// the dashboard has fallback material before any reviews exist.
func getStarterBooks(createdBy uuid.UUID) []CustomBook {
	return []CustomBook{
		{
			BookKey: "custom-starter-pride-and-prejudice",
			Title:   "Pride and Prejudice",
			Author:  "Jane Austen",
			Genre:   pq.StringArray{"romance", "fiction"},
			Description: strPtr(
				"Elizabeth Bennet navigates manners, marriage, and Mr. Darcy in Regency England.",
			),
			CreatedBy: createdBy,
		},
		{
			BookKey: "custom-starter-frankenstein",
			Title:   "Frankenstein",
			Author:  "Mary Shelley",
			Genre:   pq.StringArray{"science", "fiction"},
			Description: strPtr(
				"Victor Frankenstein animates a creature and reckons with what he has made.",
			),
			CreatedBy: createdBy,
		},
		{
			BookKey: "custom-starter-the-count-of-monte-cristo",
			Title:   "The Count of Monte Cristo",
			Author:  "Alexandre Dumas",
			Genre:   pq.StringArray{"fiction", "history"},
			Description: strPtr(
				"Edmond Dantès escapes an unjust imprisonment and executes a long revenge.",
			),
			CreatedBy: createdBy,
		},
		{
			BookKey: "custom-starter-a-study-in-scarlet",
			Title:   "A Study in Scarlet",
			Author:  "Arthur Conan Doyle",
			Genre:   pq.StringArray{"fiction"},
			Description: strPtr(
				"Sherlock Holmes and Dr. Watson take their first case together.",
			),
			CreatedBy: createdBy,
		},
		{
			BookKey: "custom-starter-the-time-machine",
			Title:   "The Time Machine",
			Author:  "H. G. Wells",
			Genre:   pq.StringArray{"science", "fantasy"},
			Description: strPtr(
				"An inventor travels to the far future and finds humanity split in two.",
			),
			CreatedBy: createdBy,
		},
		{
			BookKey: "custom-starter-the-histories",
			Title:   "The Histories",
			Author:  "Herodotus",
			Genre:   pq.StringArray{"history"},
			Description: strPtr(
				"An inquiry into the origins of the Greco-Persian Wars.",
			),
			CreatedBy: createdBy,
		},
	}
}
