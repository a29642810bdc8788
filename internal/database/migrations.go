package database

import (
	"wellread/internal/logger"
	"wellread/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.ReviewedBook{},
		&models.CustomBook{},
		&models.Review{},
		&models.ReviewLike{},
		&models.ReviewUnlike{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Follower{},
		&models.Notification{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_reviews_book_id ON reviews(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_receiver_created ON notifications(receiver_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_reviewed_books_genre ON reviewed_books USING GIN (genre)",
		"CREATE INDEX IF NOT EXISTS idx_custom_books_genre ON custom_books USING GIN (genre)",
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			return log.Err("Failed to create index", err, "index", index)
		}
	}

	log.Info("Additional indexes created")
	return nil
}
