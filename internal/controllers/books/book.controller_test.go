package bookController

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"wellread/config"
	"wellread/internal/apperrors"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/services"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	details *BookDetails
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) GetBook(ctx context.Context, bookKey string) (*BookDetails, error) {
	p.calls++
	return p.details, p.err
}

type fakeCustomBookRepo struct {
	books     []CustomBook
	createErr error
}

func (f *fakeCustomBookRepo) Create(ctx context.Context, book *CustomBook) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.books = append(f.books, *book)
	return nil
}

func (f *fakeCustomBookRepo) GetByKey(ctx context.Context, bookKey string) (*CustomBook, error) {
	return nil, nil
}

func (f *fakeCustomBookRepo) GetAll(ctx context.Context) ([]CustomBook, error) {
	return f.books, nil
}

func (f *fakeCustomBookRepo) GetByGenres(
	ctx context.Context,
	genres []string,
	excludeKeys []string,
	limit int,
) ([]CustomBook, error) {
	return nil, nil
}

func (f *fakeCustomBookRepo) GetRandom(
	ctx context.Context,
	excludeKeys []string,
	limit int,
) ([]CustomBook, error) {
	return nil, nil
}

func (f *fakeCustomBookRepo) SearchByTitle(
	ctx context.Context,
	query string,
	limit int,
) ([]CustomBook, error) {
	matched := make([]CustomBook, 0, len(f.books))
	for _, book := range f.books {
		if strings.Contains(strings.ToLower(book.Title), strings.ToLower(query)) {
			matched = append(matched, book)
		}
	}
	return matched, nil
}

func chainController(providers ...BookProvider) *BookController {
	return &BookController{
		providers: providers,
		log:       logger.New("bookController"),
	}
}

func TestResolve_FirstProviderWins(t *testing.T) {
	first := &stubProvider{
		name:    "reviewed",
		details: &BookDetails{BookKey: "key-1", Title: "Snapshot", Source: SourceAPI},
	}
	second := &stubProvider{name: "custom"}

	bc := chainController(first, second)

	details, err := bc.Resolve(context.Background(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, "Snapshot", details.Title)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestResolve_FallsThroughMisses(t *testing.T) {
	first := &stubProvider{name: "reviewed"}
	second := &stubProvider{name: "custom"}
	third := &stubProvider{
		name:    "catalog",
		details: &BookDetails{BookKey: "key-1", Title: "From Catalog", Source: SourceAPI},
	}

	bc := chainController(first, second, third)

	details, err := bc.Resolve(context.Background(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, "From Catalog", details.Title)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestResolve_AllMissIsNotFound(t *testing.T) {
	bc := chainController(
		&stubProvider{name: "reviewed"},
		&stubProvider{name: "custom"},
		&stubProvider{name: "catalog"},
	)

	_, err := bc.Resolve(context.Background(), "missing-key")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolve_ProviderErrorStopsChain(t *testing.T) {
	failing := &stubProvider{name: "catalog", err: apperrors.ErrUpstreamUnavailable}
	unreached := &stubProvider{name: "never"}

	bc := chainController(failing, unreached)

	_, err := bc.Resolve(context.Background(), "key-1")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Equal(t, 0, unreached.calls)
}

func TestResolve_EmptyKey(t *testing.T) {
	bc := chainController(&stubProvider{name: "reviewed"})

	_, err := bc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func newCatalogProvider(t *testing.T, handler http.HandlerFunc) *catalogProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	catalog := services.NewOpenLibraryService(config.Config{
		OpenLibraryURL: server.URL,
		CoverImageURL:  server.URL,
	})
	return &catalogProvider{catalog: catalog}
}

func TestCatalogProvider_NormalizesWork(t *testing.T) {
	provider := newCatalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/works/"):
			fmt.Fprint(w, `{
				"title": "The Left Hand of Darkness",
				"subjects": ["science fiction", "fiction", "gender", "winter", "politics"],
				"description": {"value": "An envoy visits a planet without fixed sex."},
				"covers": [9255566],
				"authors": [{"author": {"key": "/authors/OL26320A"}}]
			}`)
		case strings.HasPrefix(r.URL.Path, "/authors/"):
			fmt.Fprint(w, `{"name": "Ursula K. Le Guin"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	details, err := provider.GetBook(context.Background(), "/works/OL59807W")
	require.NoError(t, err)
	require.NotNil(t, details)

	assert.Equal(t, "OL59807W", details.BookKey)
	assert.Equal(t, "The Left Hand of Darkness", details.Title)
	assert.Equal(t, "Ursula K. Le Guin", details.Author)
	assert.Equal(t, SourceAPI, details.Source)
	assert.Len(t, details.Genre, MaxGenres)
	require.NotNil(t, details.Description)
	assert.Equal(t, "An envoy visits a planet without fixed sex.", *details.Description)
	require.NotNil(t, details.CoverImg)
	assert.Contains(t, *details.CoverImg, "9255566-M.jpg")
}

func TestCatalogProvider_PlainStringDescription(t *testing.T) {
	provider := newCatalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title": "Plain", "description": "Just a string."}`)
	})

	details, err := provider.GetBook(context.Background(), "OL1W")
	require.NoError(t, err)
	require.NotNil(t, details.Description)
	assert.Equal(t, "Just a string.", *details.Description)
	assert.Equal(t, "Unknown Author", details.Author)
	assert.Nil(t, details.CoverImg)
}

func TestCatalogProvider_NotFoundIsMiss(t *testing.T) {
	provider := newCatalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	details, err := provider.GetBook(context.Background(), "OL404W")
	assert.NoError(t, err)
	assert.Nil(t, details)
}

func TestCatalogProvider_OutageIsUpstreamError(t *testing.T) {
	provider := newCatalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.GetBook(context.Background(), "OL500W")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestCatalogProvider_AuthorLookupDegrades(t *testing.T) {
	provider := newCatalogProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/authors/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"title": "Orphan Work", "authors": [{"author": {"key": "/authors/OL1A"}}]}`)
	})

	details, err := provider.GetBook(context.Background(), "OL1W")
	require.NoError(t, err)
	assert.Equal(t, "Unknown Author", details.Author)
}

func adminUser() *User {
	user := &User{Username: "admin", IsAdmin: true, IsActive: true}
	return user
}

func TestCreateCustomBook_AdminOnly(t *testing.T) {
	bc := &BookController{
		customBookRepo: &fakeCustomBookRepo{},
		log:            logger.New("bookController"),
	}

	reader := &User{Username: "reader"}
	_, err := bc.CreateCustomBook(context.Background(), reader, CreateCustomBookRequest{
		Title:  "A Title",
		Author: "An Author",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateCustomBook_RequiresTitleAndAuthor(t *testing.T) {
	bc := &BookController{
		customBookRepo: &fakeCustomBookRepo{},
		log:            logger.New("bookController"),
	}

	_, err := bc.CreateCustomBook(context.Background(), adminUser(), CreateCustomBookRequest{
		Title:  "   ",
		Author: "An Author",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateCustomBook_RejectsNonImageCover(t *testing.T) {
	bc := &BookController{
		customBookRepo: &fakeCustomBookRepo{},
		log:            logger.New("bookController"),
	}

	cover := "https://example.com/cover.pdf"
	_, err := bc.CreateCustomBook(context.Background(), adminUser(), CreateCustomBookRequest{
		Title:    "A Title",
		Author:   "An Author",
		CoverImg: &cover,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateCustomBook_TruncatesGenres(t *testing.T) {
	repo := &fakeCustomBookRepo{}
	bc := &BookController{
		customBookRepo: repo,
		log:            logger.New("bookController"),
	}

	book, err := bc.CreateCustomBook(context.Background(), adminUser(), CreateCustomBookRequest{
		Title:  "A Title",
		Author: "An Author",
		Genre:  []string{"a", "b", "c", "d", "e", "f"},
	})
	require.NoError(t, err)

	assert.Len(t, book.Genre, MaxGenres)
	assert.True(t, strings.HasPrefix(book.BookKey, "custom-"))
}

func TestCreateCustomBook_DuplicateIsConflict(t *testing.T) {
	repo := &fakeCustomBookRepo{
		createErr: &pq.Error{Code: "23505"},
	}
	bc := &BookController{
		customBookRepo: repo,
		log:            logger.New("bookController"),
	}

	_, err := bc.CreateCustomBook(context.Background(), adminUser(), CreateCustomBookRequest{
		Title:  "A Title",
		Author: "An Author",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSearch_DegradesWhenCatalogDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	catalog := services.NewOpenLibraryService(config.Config{
		OpenLibraryURL: server.URL,
		CoverImageURL:  server.URL,
	})

	repo := &fakeCustomBookRepo{books: []CustomBook{
		{BookKey: "custom-1", Title: "Local Hit", Author: "Author"},
	}}
	bc := &BookController{
		customBookRepo: repo,
		catalog:        catalog,
		log:            logger.New("bookController"),
	}

	results, err := bc.Search(context.Background(), "local")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Local Hit", results[0].Title)
	assert.Equal(t, SourceCustom, results[0].Source)
}

func TestSearch_EmptyQuery(t *testing.T) {
	bc := &BookController{log: logger.New("bookController")}

	_, err := bc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
