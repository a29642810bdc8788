package repositories

import (
	"context"
	"errors"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	GetByUserAndBook(
		ctx context.Context,
		tx *gorm.DB,
		userID uuid.UUID,
		bookID string,
	) (*Review, error)
	GetByBook(ctx context.Context, bookID string) ([]ReviewWithBook, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]ReviewWithBook, error)
	GetRecent(ctx context.Context, limit int) ([]ReviewWithBook, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountForBook(ctx context.Context, tx *gorm.DB, bookID string, source BookSource) (int64, error)
	Stats(ctx context.Context, bookID string) (BookStats, error)
	StatsForKeys(ctx context.Context, bookIDs []string) (map[string]BookStats, error)

	CreateLike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error
	DeleteLike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) (bool, error)
	CreateUnlike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) error
	DeleteUnlike(ctx context.Context, tx *gorm.DB, userID, reviewID uuid.UUID) (bool, error)
	GetLikeStatus(ctx context.Context, userID, reviewID uuid.UUID) (ReviewLikeStatus, error)
}

type reviewRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReviewRepository(db database.DB) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: logger.New("reviewRepository"),
	}
}

// reviewWithBookSelect joins review author and the materialized book snapshot.
const reviewWithBookSelect = `
	reviews.*,
	users.username AS username,
	users.profile_img AS profile_img,
	reviewed_books.title AS title,
	reviewed_books.author AS author,
	reviewed_books.cover_img AS cover_img,
	reviewed_books.genre AS genre`

func (r *reviewRepository) withBookJoin(ctx context.Context) *gorm.DB {
	return r.db.SQLWithContext(ctx).
		Table("reviews").
		Select(reviewWithBookSelect).
		Joins("JOIN users ON users.id = reviews.user_id").
		Joins("JOIN reviewed_books ON reviewed_books.book_key = reviews.book_id AND reviewed_books.source = reviews.book_source")
}

func (r *reviewRepository) Create(ctx context.Context, tx *gorm.DB, review *Review) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(review).Error; err != nil {
		return log.Err("failed to create review", err, "bookID", review.BookID)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	log := r.log.Function("GetByID")

	var review Review
	if err := r.db.SQLWithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get review", err, "id", id)
	}

	return &review, nil
}

func (r *reviewRepository) GetByUserAndBook(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	bookID string,
) (*Review, error) {
	log := r.log.Function("GetByUserAndBook")

	var review Review
	err := tx.WithContext(ctx).
		First(&review, "user_id = ? AND book_id = ?", userID, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get review by user and book", err, "bookID", bookID)
	}

	return &review, nil
}

func (r *reviewRepository) GetByBook(
	ctx context.Context,
	bookID string,
) ([]ReviewWithBook, error) {
	log := r.log.Function("GetByBook")

	var reviews []ReviewWithBook
	err := r.withBookJoin(ctx).
		Where("reviews.book_id = ?", bookID).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, log.Err("failed to get reviews for book", err, "bookID", bookID)
	}

	return reviews, nil
}

func (r *reviewRepository) GetByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]ReviewWithBook, error) {
	log := r.log.Function("GetByUser")

	var reviews []ReviewWithBook
	err := r.withBookJoin(ctx).
		Where("reviews.user_id = ?", userID).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, log.Err("failed to get reviews for user", err, "userID", userID)
	}

	return reviews, nil
}

func (r *reviewRepository) GetRecent(ctx context.Context, limit int) ([]ReviewWithBook, error) {
	log := r.log.Function("GetRecent")

	var reviews []ReviewWithBook
	err := r.withBookJoin(ctx).
		Order("reviews.created_at DESC").
		Limit(limit).
		Scan(&reviews).Error
	if err != nil {
		return nil, log.Err("failed to get recent reviews", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, review *Review) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(review).Error; err != nil {
		return log.Err("failed to update review", err, "id", review.ID)
	}

	return nil
}

// Delete removes the review and its reactions and comments. Runs inside the
// caller's transaction so the snapshot cascade stays atomic.
func (r *reviewRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	db := tx.WithContext(ctx)

	if err := db.Where("review_id = ?", id).Delete(&ReviewLike{}).Error; err != nil {
		return log.Err("failed to delete review likes", err, "reviewID", id)
	}
	if err := db.Where("review_id = ?", id).Delete(&ReviewUnlike{}).Error; err != nil {
		return log.Err("failed to delete review unlikes", err, "reviewID", id)
	}

	err := db.Exec(
		"DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE review_id = ?)",
		id,
	).Error
	if err != nil {
		return log.Err("failed to delete comment likes", err, "reviewID", id)
	}

	if err := db.Where("review_id = ?", id).Delete(&Comment{}).Error; err != nil {
		return log.Err("failed to delete comments", err, "reviewID", id)
	}

	if err := db.Delete(&Review{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete review", err, "reviewID", id)
	}

	return nil
}

func (r *reviewRepository) CountForBook(
	ctx context.Context,
	tx *gorm.DB,
	bookID string,
	source BookSource,
) (int64, error) {
	log := r.log.Function("CountForBook")

	var count int64
	err := tx.WithContext(ctx).
		Model(&Review{}).
		Where("book_id = ? AND book_source = ?", bookID, source).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count reviews for book", err, "bookID", bookID)
	}

	return count, nil
}

type statsRow struct {
	BookID string
	Count  int64
	Avg    *float64
}

// Stats aggregates review count and average rating for one book. The average
// is rounded to one decimal place.
func (r *reviewRepository) Stats(ctx context.Context, bookID string) (BookStats, error) {
	log := r.log.Function("Stats")

	var row statsRow
	err := r.db.SQLWithContext(ctx).
		Model(&Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return BookStats{}, log.Err("failed to get review stats", err, "bookID", bookID)
	}

	return BookStats{
		Count:     int(row.Count),
		AvgRating: roundRating(row.Avg),
	}, nil
}

// StatsForKeys aggregates stats for many books in one query. Books with no
// reviews are absent from the result map.
func (r *reviewRepository) StatsForKeys(
	ctx context.Context,
	bookIDs []string,
) (map[string]BookStats, error) {
	log := r.log.Function("StatsForKeys")

	stats := make(map[string]BookStats, len(bookIDs))
	if len(bookIDs) == 0 {
		return stats, nil
	}

	var rows []statsRow
	err := r.db.SQLWithContext(ctx).
		Model(&Review{}).
		Select("book_id, COUNT(*) AS count, AVG(rating) AS avg").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, log.Err("failed to get review stats for books", err, "count", len(bookIDs))
	}

	for _, row := range rows {
		stats[row.BookID] = BookStats{
			Count:     int(row.Count),
			AvgRating: roundRating(row.Avg),
		}
	}

	return stats, nil
}

func roundRating(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return decimal.NewFromFloat(*avg).Round(1).InexactFloat64()
}

func (r *reviewRepository) CreateLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) error {
	log := r.log.Function("CreateLike")

	like := ReviewLike{UserID: userID, ReviewID: reviewID}
	if err := tx.WithContext(ctx).Create(&like).Error; err != nil {
		return log.Err("failed to create review like", err, "reviewID", reviewID)
	}

	return nil
}

func (r *reviewRepository) DeleteLike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	log := r.log.Function("DeleteLike")

	result := tx.WithContext(ctx).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Delete(&ReviewLike{})
	if result.Error != nil {
		return false, log.Err("failed to delete review like", result.Error, "reviewID", reviewID)
	}

	return result.RowsAffected > 0, nil
}

func (r *reviewRepository) CreateUnlike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) error {
	log := r.log.Function("CreateUnlike")

	unlike := ReviewUnlike{UserID: userID, ReviewID: reviewID}
	if err := tx.WithContext(ctx).Create(&unlike).Error; err != nil {
		return log.Err("failed to create review unlike", err, "reviewID", reviewID)
	}

	return nil
}

func (r *reviewRepository) DeleteUnlike(
	ctx context.Context,
	tx *gorm.DB,
	userID, reviewID uuid.UUID,
) (bool, error) {
	log := r.log.Function("DeleteUnlike")

	result := tx.WithContext(ctx).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Delete(&ReviewUnlike{})
	if result.Error != nil {
		return false, log.Err("failed to delete review unlike", result.Error, "reviewID", reviewID)
	}

	return result.RowsAffected > 0, nil
}

func (r *reviewRepository) GetLikeStatus(
	ctx context.Context,
	userID, reviewID uuid.UUID,
) (ReviewLikeStatus, error) {
	log := r.log.Function("GetLikeStatus")

	var status ReviewLikeStatus

	var likeCount int64
	err := r.db.SQLWithContext(ctx).
		Model(&ReviewLike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&likeCount).Error
	if err != nil {
		return status, log.Err("failed to get like status", err, "reviewID", reviewID)
	}

	var unlikeCount int64
	err = r.db.SQLWithContext(ctx).
		Model(&ReviewUnlike{}).
		Where("user_id = ? AND review_id = ?", userID, reviewID).
		Count(&unlikeCount).Error
	if err != nil {
		return status, log.Err("failed to get unlike status", err, "reviewID", reviewID)
	}

	status.Liked = likeCount > 0
	status.Unliked = unlikeCount > 0
	return status, nil
}
