package bookController

import (
	"context"
	"errors"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/services"
	"wellread/internal/utils"

	"wellread/internal/apperrors"
)

// BookProvider resolves a book key against one metadata source. A nil result
// with a nil error is a miss; the chain moves to the next provider.
type BookProvider interface {
	Name() string
	GetBook(ctx context.Context, bookKey string) (*BookDetails, error)
}

// reviewedBookProvider serves the materialized snapshots. Fastest source and
// always consulted first.
type reviewedBookProvider struct {
	repo repositories.ReviewedBookRepository
}

func (p *reviewedBookProvider) Name() string { return "reviewed" }

func (p *reviewedBookProvider) GetBook(
	ctx context.Context,
	bookKey string,
) (*BookDetails, error) {
	book, err := p.repo.GetByKey(ctx, bookKey)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, nil
	}

	details := book.ToDetails()
	return &details, nil
}

type customBookProvider struct {
	repo repositories.CustomBookRepository
}

func (p *customBookProvider) Name() string { return "custom" }

func (p *customBookProvider) GetBook(
	ctx context.Context,
	bookKey string,
) (*BookDetails, error) {
	book, err := p.repo.GetByKey(ctx, bookKey)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, nil
	}

	details := book.ToDetails()
	return &details, nil
}

// catalogProvider is the chain's last resort, fetching from the external
// catalog and normalizing the payload into the internal shape.
type catalogProvider struct {
	catalog *services.OpenLibraryService
}

func (p *catalogProvider) Name() string { return "catalog" }

func (p *catalogProvider) GetBook(
	ctx context.Context,
	bookKey string,
) (*BookDetails, error) {
	work, err := p.catalog.GetWork(utils.NormalizeWorkKey(bookKey))
	if err != nil {
		if errors.Is(err, services.ErrCatalogNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrUpstreamUnavailable
	}

	return p.normalize(bookKey, work), nil
}

// normalize maps a catalog work onto BookDetails: subjects are truncated to
// the genre cap, the description is flattened, and the author name comes from
// a secondary lookup that degrades to a placeholder on failure.
func (p *catalogProvider) normalize(bookKey string, work *services.WorkResponse) *BookDetails {
	details := &BookDetails{
		BookKey: utils.NormalizeWorkKey(bookKey),
		Title:   work.Title,
		Source:  SourceAPI,
	}

	if len(work.Subjects) > MaxGenres {
		details.Genre = work.Subjects[:MaxGenres]
	} else {
		details.Genre = work.Subjects
	}

	if work.Description != nil {
		description := work.Description.Value
		details.Description = &description
	}

	if len(work.Covers) > 0 {
		details.CoverImg = p.catalog.CoverURL(work.Covers[0])
	}

	details.Author = "Unknown Author"
	if len(work.Authors) > 0 {
		if author, err := p.catalog.GetAuthor(work.Authors[0].Author.Key); err == nil && author.Name != "" {
			details.Author = author.Name
		}
	}

	return details
}
