package repositories

import (
	"context"
	"errors"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewedBookRepository manages the write-once snapshots materialized when a
// book is first reviewed. Snapshot rows are keyed by (book_key, source) and
// removed only when the last review for the pair is deleted.
type ReviewedBookRepository interface {
	GetByKey(ctx context.Context, bookKey string) (*ReviewedBook, error)
	Insert(ctx context.Context, tx *gorm.DB, book *ReviewedBook) error
	Delete(ctx context.Context, tx *gorm.DB, bookKey string, source BookSource) error
	GetByGenres(
		ctx context.Context,
		genres []string,
		excludeKeys []string,
		limit int,
	) ([]ReviewedBook, error)
	GetRandom(ctx context.Context, excludeKeys []string, limit int) ([]ReviewedBook, error)
}

type reviewedBookRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReviewedBookRepository(db database.DB) ReviewedBookRepository {
	return &reviewedBookRepository{
		db:  db,
		log: logger.New("reviewedBookRepository"),
	}
}

func (r *reviewedBookRepository) GetByKey(
	ctx context.Context,
	bookKey string,
) (*ReviewedBook, error) {
	log := r.log.Function("GetByKey")

	var book ReviewedBook
	if err := r.db.SQLWithContext(ctx).First(&book, "book_key = ?", bookKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get reviewed book", err, "bookKey", bookKey)
	}

	return &book, nil
}

// Insert persists a snapshot, silently keeping the existing row when another
// review created it first. The snapshot is never refreshed.
func (r *reviewedBookRepository) Insert(
	ctx context.Context,
	tx *gorm.DB,
	book *ReviewedBook,
) error {
	log := r.log.Function("Insert")

	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(book).Error
	if err != nil {
		return log.Err("failed to insert reviewed book", err, "bookKey", book.BookKey)
	}

	return nil
}

func (r *reviewedBookRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	bookKey string,
	source BookSource,
) error {
	log := r.log.Function("Delete")

	err := tx.WithContext(ctx).
		Where("book_key = ? AND source = ?", bookKey, source).
		Delete(&ReviewedBook{}).Error
	if err != nil {
		return log.Err("failed to delete reviewed book", err, "bookKey", bookKey)
	}

	return nil
}

// GetByGenres samples books whose genre list overlaps the given genres,
// skipping excluded keys. Uses the GIN index on the genre array.
func (r *reviewedBookRepository) GetByGenres(
	ctx context.Context,
	genres []string,
	excludeKeys []string,
	limit int,
) ([]ReviewedBook, error) {
	log := r.log.Function("GetByGenres")

	if len(genres) == 0 {
		return nil, nil
	}

	query := r.db.SQLWithContext(ctx).Where("genre && ?", pq.Array(genres))
	if len(excludeKeys) > 0 {
		query = query.Where("book_key NOT IN ?", excludeKeys)
	}

	var books []ReviewedBook
	if err := query.Order("RANDOM()").Limit(limit).Find(&books).Error; err != nil {
		return nil, log.Err("failed to get reviewed books by genres", err, "genres", genres)
	}

	return books, nil
}

func (r *reviewedBookRepository) GetRandom(
	ctx context.Context,
	excludeKeys []string,
	limit int,
) ([]ReviewedBook, error) {
	log := r.log.Function("GetRandom")

	query := r.db.SQLWithContext(ctx)
	if len(excludeKeys) > 0 {
		query = query.Where("book_key NOT IN ?", excludeKeys)
	}

	var books []ReviewedBook
	if err := query.Order("RANDOM()").Limit(limit).Find(&books).Error; err != nil {
		return nil, log.Err("failed to get random reviewed books", err)
	}

	return books, nil
}
