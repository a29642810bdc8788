package repositories

import (
	"context"
	"errors"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type CustomBookRepository interface {
	Create(ctx context.Context, book *CustomBook) error
	GetByKey(ctx context.Context, bookKey string) (*CustomBook, error)
	GetAll(ctx context.Context) ([]CustomBook, error)
	GetByGenres(
		ctx context.Context,
		genres []string,
		excludeKeys []string,
		limit int,
	) ([]CustomBook, error)
	GetRandom(ctx context.Context, excludeKeys []string, limit int) ([]CustomBook, error)
	SearchByTitle(ctx context.Context, query string, limit int) ([]CustomBook, error)
}

type customBookRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCustomBookRepository(db database.DB) CustomBookRepository {
	return &customBookRepository{
		db:  db,
		log: logger.New("customBookRepository"),
	}
}

func (r *customBookRepository) Create(ctx context.Context, book *CustomBook) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(book).Error; err != nil {
		return log.Err("failed to create custom book", err, "bookKey", book.BookKey)
	}

	return nil
}

func (r *customBookRepository) GetByKey(
	ctx context.Context,
	bookKey string,
) (*CustomBook, error) {
	log := r.log.Function("GetByKey")

	var book CustomBook
	if err := r.db.SQLWithContext(ctx).First(&book, "book_key = ?", bookKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get custom book", err, "bookKey", bookKey)
	}

	return &book, nil
}

func (r *customBookRepository) GetAll(ctx context.Context) ([]CustomBook, error) {
	log := r.log.Function("GetAll")

	var books []CustomBook
	err := r.db.SQLWithContext(ctx).Order("created_at DESC").Find(&books).Error
	if err != nil {
		return nil, log.Err("failed to list custom books", err)
	}

	return books, nil
}

func (r *customBookRepository) GetByGenres(
	ctx context.Context,
	genres []string,
	excludeKeys []string,
	limit int,
) ([]CustomBook, error) {
	log := r.log.Function("GetByGenres")

	if len(genres) == 0 {
		return nil, nil
	}

	query := r.db.SQLWithContext(ctx).Where("genre && ?", pq.Array(genres))
	if len(excludeKeys) > 0 {
		query = query.Where("book_key NOT IN ?", excludeKeys)
	}

	var books []CustomBook
	if err := query.Order("RANDOM()").Limit(limit).Find(&books).Error; err != nil {
		return nil, log.Err("failed to get custom books by genres", err, "genres", genres)
	}

	return books, nil
}

func (r *customBookRepository) GetRandom(
	ctx context.Context,
	excludeKeys []string,
	limit int,
) ([]CustomBook, error) {
	log := r.log.Function("GetRandom")

	query := r.db.SQLWithContext(ctx)
	if len(excludeKeys) > 0 {
		query = query.Where("book_key NOT IN ?", excludeKeys)
	}

	var books []CustomBook
	if err := query.Order("RANDOM()").Limit(limit).Find(&books).Error; err != nil {
		return nil, log.Err("failed to get random custom books", err)
	}

	return books, nil
}

func (r *customBookRepository) SearchByTitle(
	ctx context.Context,
	query string,
	limit int,
) ([]CustomBook, error) {
	log := r.log.Function("SearchByTitle")

	var books []CustomBook
	err := r.db.SQLWithContext(ctx).
		Where("title ILIKE ?", "%"+query+"%").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, log.Err("failed to search custom books", err, "query", query)
	}

	return books, nil
}
