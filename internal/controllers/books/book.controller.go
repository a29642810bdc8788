package bookController

import (
	"context"
	"strings"
	"wellread/config"
	"wellread/internal/apperrors"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/services"
	"wellread/internal/utils"

	"github.com/google/uuid"
)

const searchLimit = 10

type BookController struct {
	providers      []BookProvider
	customBookRepo repositories.CustomBookRepository
	reviewRepo     repositories.ReviewRepository
	catalog        *services.OpenLibraryService
	db             database.DB
	config         config.Config
	log            logger.Logger
}

// BookWithStats is the book detail payload: resolved identity plus review
// aggregates.
type BookWithStats struct {
	BookDetails
	Stats BookStats `json:"stats"`
}

type CreateCustomBookRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	CoverImg    *string  `json:"coverImg"`
	Genre       []string `json:"genre"`
	Description *string  `json:"description"`
}

type BookControllerInterface interface {
	Resolve(ctx context.Context, bookKey string) (*BookDetails, error)
	GetBookDetails(ctx context.Context, bookKey string) (*BookWithStats, error)
	Search(ctx context.Context, query string) ([]BookDetails, error)
	CreateCustomBook(
		ctx context.Context,
		user *User,
		request CreateCustomBookRequest,
	) (*CustomBook, error)
	ListCustomBooks(ctx context.Context, user *User) ([]CustomBook, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) BookControllerInterface {
	return &BookController{
		providers: []BookProvider{
			&reviewedBookProvider{repo: repos.ReviewedBook},
			&customBookProvider{repo: repos.CustomBook},
			&catalogProvider{catalog: services.OpenLibrary},
		},
		customBookRepo: repos.CustomBook,
		reviewRepo:     repos.Review,
		catalog:        services.OpenLibrary,
		db:             db,
		config:         config,
		log:            logger.New("bookController"),
	}
}

// Resolve walks the provider chain and returns the first hit. All providers
// missing means the key identifies nothing anywhere.
func (bc *BookController) Resolve(ctx context.Context, bookKey string) (*BookDetails, error) {
	log := bc.log.Function("Resolve")

	if bookKey == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "book key is required")
	}

	for _, provider := range bc.providers {
		details, err := provider.GetBook(ctx, bookKey)
		if err != nil {
			return nil, log.Err("provider failed", err, "provider", provider.Name(), "bookKey", bookKey)
		}
		if details != nil {
			return details, nil
		}
	}

	return nil, log.ErrorWithType(apperrors.ErrNotFound, "book not found", "bookKey", bookKey)
}

func (bc *BookController) GetBookDetails(
	ctx context.Context,
	bookKey string,
) (*BookWithStats, error) {
	log := bc.log.Function("GetBookDetails")

	details, err := bc.Resolve(ctx, bookKey)
	if err != nil {
		return nil, err
	}

	stats, err := bc.reviewRepo.Stats(ctx, details.BookKey)
	if err != nil {
		return nil, log.Err("failed to get book stats", err, "bookKey", bookKey)
	}

	return &BookWithStats{
		BookDetails: *details,
		Stats:       stats,
	}, nil
}

// Search merges catalog results with custom books matching the query. A
// catalog outage degrades to custom-only results rather than failing the
// whole search.
func (bc *BookController) Search(ctx context.Context, query string) ([]BookDetails, error) {
	log := bc.log.Function("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "search query is required")
	}

	var results []BookDetails

	docs, err := bc.catalog.Search(query, searchLimit)
	if err != nil {
		log.Warn("catalog search failed, returning custom books only", "query", query, "error", err)
	}
	for _, doc := range docs {
		details := BookDetails{
			BookKey:  utils.NormalizeWorkKey(doc.Key),
			Title:    doc.Title,
			Author:   "Unknown Author",
			CoverImg: bc.catalog.CoverURL(doc.CoverI),
			Source:   SourceAPI,
		}
		if len(doc.AuthorName) > 0 {
			details.Author = doc.AuthorName[0]
		}
		results = append(results, details)
	}

	customBooks, err := bc.customBookRepo.SearchByTitle(ctx, query, searchLimit)
	if err != nil {
		return nil, log.Err("failed to search custom books", err, "query", query)
	}
	for _, book := range customBooks {
		results = append(results, book.ToDetails())
	}

	return results, nil
}

func (bc *BookController) CreateCustomBook(
	ctx context.Context,
	user *User,
	request CreateCustomBookRequest,
) (*CustomBook, error) {
	log := bc.log.Function("CreateCustomBook")

	if !user.IsAdmin {
		return nil, log.ErrorWithType(
			apperrors.ErrForbidden,
			"only admins can create custom books",
			"userID", user.ID,
		)
	}

	request.Title = strings.TrimSpace(request.Title)
	request.Author = strings.TrimSpace(request.Author)
	if request.Title == "" || request.Author == "" {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "title and author are required")
	}

	if request.CoverImg != nil && *request.CoverImg != "" &&
		!utils.IsImageURL(*request.CoverImg) {
		return nil, log.ErrorWithType(apperrors.ErrInvalidInput, "cover image must be a jpg, jpeg or png URL")
	}

	if len(request.Genre) > MaxGenres {
		request.Genre = request.Genre[:MaxGenres]
	}

	book := &CustomBook{
		BookKey:     "custom-" + uuid.New().String(),
		Title:       request.Title,
		Author:      request.Author,
		CoverImg:    request.CoverImg,
		Genre:       request.Genre,
		Description: request.Description,
		CreatedBy:   user.ID,
	}

	if err := bc.customBookRepo.Create(ctx, book); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, log.ErrorWithType(apperrors.ErrConflict, "custom book already exists")
		}
		return nil, log.Err("failed to create custom book", err)
	}

	log.Info("Custom book created", "bookKey", book.BookKey, "createdBy", user.ID)
	return book, nil
}

func (bc *BookController) ListCustomBooks(ctx context.Context, user *User) ([]CustomBook, error) {
	log := bc.log.Function("ListCustomBooks")

	books, err := bc.customBookRepo.GetAll(ctx)
	if err != nil {
		return nil, log.Err("failed to list custom books", err)
	}

	return books, nil
}
