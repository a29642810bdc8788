package initialize

import (
	"wellread/config"

	logger "wellread/internal/logger"

	. "wellread/internal/models"

	"gorm.io/gorm"
)

const systemUsername = "wellread"

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	systemUser, err := initializeSystemUser(db, log)
	if err != nil {
		return log.Err("failed to initialize system user", err)
	}

	if err := initializeStarterBooks(db, systemUser, log); err != nil {
		return log.Err("failed to initialize starter books", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeSystemUser ensures the curator account that owns the starter
// catalog exists. It cannot log in; it only anchors CreatedBy references.
func initializeSystemUser(db *gorm.DB, log logger.Logger) (*User, error) {
	var existing User
	if err := db.First(&existing, "username = ?", systemUsername).Error; err == nil {
		log.Debug("System user already exists", "username", systemUsername)
		return &existing, nil
	}

	log.Info("Creating system user", "username", systemUsername)
	user := User{
		Username: systemUsername,
		Email:    "system@wellread.local",
		IsAdmin:  true,
		IsActive: false,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, log.Err("failed to create system user", err)
	}

	return &user, nil
}

func initializeStarterBooks(db *gorm.DB, systemUser *User, log logger.Logger) error {
	log.Info("Initializing starter book catalog")

	books := getStarterBooks(systemUser.ID)

	for _, book := range books {
		var existing CustomBook
		if err := db.First(&existing, "book_key = ?", book.BookKey).Error; err == nil {
			log.Debug("Starter book already exists", "bookKey", book.BookKey)
			continue
		}
		log.Info("Initializing starter book", "title", book.Title)
		if err := db.Create(&book).Error; err != nil {
			return log.Err("failed to create starter book", err, "title", book.Title)
		}
	}

	log.Info("Starter book catalog initialized", "count", len(books))
	return nil
}
