package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"wellread/config"
	"wellread/internal/logger"
)

// ErrCatalogNotFound marks a 404 from the catalog, distinct from an outage.
var ErrCatalogNotFound = errors.New("catalog entry not found")

// OpenLibraryService is the catalog gateway client. Every method returns an
// error on upstream failure; callers decide whether to degrade or surface it.
type OpenLibraryService struct {
	client   *http.Client
	baseURL  string
	coverURL string
	log      logger.Logger
}

// WorkDescription is either a plain string or a {"value": "..."} wrapper in
// the catalog payload.
type WorkDescription struct {
	Value string
}

func (d *WorkDescription) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		d.Value = plain
		return nil
	}

	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}

	d.Value = wrapped.Value
	return nil
}

type WorkResponse struct {
	Title       string           `json:"title"`
	Subjects    []string         `json:"subjects"`
	Description *WorkDescription `json:"description"`
	Covers      []int            `json:"covers"`
	Authors     []struct {
		Author struct {
			Key string `json:"key"`
		} `json:"author"`
	} `json:"authors"`
}

type AuthorResponse struct {
	Name string `json:"name"`
}

type SearchDoc struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	CoverI     int      `json:"cover_i"`
}

type SearchResponse struct {
	Docs []SearchDoc `json:"docs"`
}

type SubjectWork struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	CoverID int    `json:"cover_id"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

type SubjectResponse struct {
	Works []SubjectWork `json:"works"`
}

func NewOpenLibraryService(config config.Config) *OpenLibraryService {
	return &OpenLibraryService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimSuffix(config.OpenLibraryURL, "/"),
		coverURL: strings.TrimSuffix(config.CoverImageURL, "/"),
		log:      logger.New("openLibraryService"),
	}
}

// GetWork fetches a work by its key (without the "/works/" prefix).
func (s *OpenLibraryService) GetWork(workKey string) (*WorkResponse, error) {
	log := s.log.Function("GetWork")

	if workKey == "" {
		return nil, fmt.Errorf("work key cannot be empty")
	}

	var work WorkResponse
	endpoint := fmt.Sprintf("%s/works/%s.json", s.baseURL, url.PathEscape(workKey))
	if err := s.getJSON(endpoint, &work); err != nil {
		return nil, log.Err("failed to fetch work", err, "workKey", workKey)
	}

	return &work, nil
}

// GetAuthor fetches an author by key. The key arrives as the raw reference
// from a work payload, e.g. "/authors/OL23919A".
func (s *OpenLibraryService) GetAuthor(authorKey string) (*AuthorResponse, error) {
	log := s.log.Function("GetAuthor")

	if authorKey == "" {
		return nil, fmt.Errorf("author key cannot be empty")
	}

	var author AuthorResponse
	endpoint := s.baseURL + authorKey + ".json"
	if err := s.getJSON(endpoint, &author); err != nil {
		return nil, log.Err("failed to fetch author", err, "authorKey", authorKey)
	}

	return &author, nil
}

// Search runs a free-text search against the catalog.
func (s *OpenLibraryService) Search(query string, limit int) ([]SearchDoc, error) {
	log := s.log.Function("Search")

	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	endpoint := fmt.Sprintf(
		"%s/search.json?q=%s&limit=%d",
		s.baseURL,
		url.QueryEscape(query),
		limit,
	)

	var result SearchResponse
	if err := s.getJSON(endpoint, &result); err != nil {
		return nil, log.Err("failed to search catalog", err, "query", query)
	}

	return result.Docs, nil
}

// GetSubjectWorks fetches works tagged with a subject slug
// (e.g. "science_fiction").
func (s *OpenLibraryService) GetSubjectWorks(subject string, limit int) ([]SubjectWork, error) {
	log := s.log.Function("GetSubjectWorks")

	if subject == "" {
		return nil, fmt.Errorf("subject cannot be empty")
	}

	endpoint := fmt.Sprintf(
		"%s/subjects/%s.json?limit=%d",
		s.baseURL,
		url.PathEscape(subject),
		limit,
	)

	var result SubjectResponse
	if err := s.getJSON(endpoint, &result); err != nil {
		return nil, log.Err("failed to fetch subject works", err, "subject", subject)
	}

	return result.Works, nil
}

// CoverURL builds the medium-size cover image URL for a cover id. Returns nil
// when the catalog reported no cover.
func (s *OpenLibraryService) CoverURL(coverID int) *string {
	if coverID == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/b/id/%d-M.jpg", s.coverURL, coverID)
	return &url
}

func (s *OpenLibraryService) getJSON(endpoint string, target any) error {
	log := s.log.Function("getJSON")

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Wellread/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, endpoint)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
