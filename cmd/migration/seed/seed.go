package seed

import (
	"wellread/config"
	"wellread/internal/logger"

	. "wellread/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			Username:       "admin",
			Email:          "admin@example.com",
			Bio:            stringPtr("Site administrator"),
			FavoriteGenres: pq.StringArray{"fiction", "history"},
			IsAdmin:        true,
			IsActive:       true,
		},
		{
			Username:       "ada",
			Email:          "ada.lovelace@example.com",
			Bio:            stringPtr("Reads everything with equations in it"),
			FavoriteGenres: pq.StringArray{"science"},
			IsAdmin:        false,
			IsActive:       true,
		},
		{
			Username:       "marcel",
			Email:          "marcel@example.com",
			FavoriteGenres: pq.StringArray{"fiction", "romance", "fantasy"},
			IsAdmin:        false,
			IsActive:       true,
		},
	}

	for _, user := range users {
		var existingUser User
		if err := db.First(&existingUser, "username = ?", user.Username).Error; err == nil {
			log.Info("User already exists", "username", user.Username)
			continue
		}
		log.Info("Seeding user", "username", user.Username)
		if err := db.Create(&user).Error; err != nil {
			log.Er("failed to create user", err, "username", user.Username)
		}
	}

	return nil
}
