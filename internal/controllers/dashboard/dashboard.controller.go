package dashboardController

import (
	"context"
	"math/rand"
	"sync"
	"time"
	"wellread/config"
	"wellread/internal/database"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/services"
	"wellread/internal/utils"
)

const (
	dashboardLimit = 5
	minGenreBooks  = 4
	subjectFetch   = 12
)

// randomSubjects feeds the last-resort catalog tier when nothing else fills
// the dashboard.
var randomSubjects = []string{"fiction", "science", "history", "romance", "fantasy"}

type DashboardController struct {
	reviewedBookRepo repositories.ReviewedBookRepository
	customBookRepo   repositories.CustomBookRepository
	reviewRepo       repositories.ReviewRepository
	catalog          *services.OpenLibraryService
	history          services.HistoryStore
	db               database.DB
	config           config.Config
	log              logger.Logger

	rng *rand.Rand
	mu  sync.Mutex
	now func() time.Time
}

// DashboardResponse is the recommendation payload. Featured is the first
// pick, with its description backfilled from the catalog when missing; Books
// holds the remaining picks so consumers never render the featured book
// twice.
type DashboardResponse struct {
	Books        []BookCandidate `json:"books"`
	Featured     *BookCandidate  `json:"featured,omitempty"`
	UsedFallback bool            `json:"usedFallback"`
}

// DashboardMetrics is the admin snapshot of platform volume.
type DashboardMetrics struct {
	Users         int64 `json:"users"`
	Reviews       int64 `json:"reviews"`
	ReviewedBooks int64 `json:"reviewedBooks"`
	CustomBooks   int64 `json:"customBooks"`
	Notifications int64 `json:"notifications"`
}

type DashboardControllerInterface interface {
	GetDashboardBooks(ctx context.Context, user *User) (*DashboardResponse, error)
	GetDashboardMetrics(ctx context.Context, user *User) (*DashboardMetrics, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) DashboardControllerInterface {
	return newController(
		repos,
		services,
		config,
		db,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		time.Now,
	)
}

// NewWithRandom builds a controller with an injected random source and clock.
func NewWithRandom(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
	rng *rand.Rand,
	now func() time.Time,
) DashboardControllerInterface {
	return newController(repos, services, config, db, rng, now)
}

func newController(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
	rng *rand.Rand,
	now func() time.Time,
) *DashboardController {
	return &DashboardController{
		reviewedBookRepo: repos.ReviewedBook,
		customBookRepo:   repos.CustomBook,
		reviewRepo:       repos.Review,
		catalog:          services.OpenLibrary,
		history:          services.History,
		db:               db,
		config:           config,
		log:              logger.New("dashboardController"),
		rng:              rng,
		now:              now,
	}
}

// GetDashboardBooks assembles the recommendation set: genre-matched reviewed
// and custom books first, then catalog subject works, then random tiers when
// the genre pools run dry. Recently shown books are excluded and the shown
// history is advanced afterwards.
func (dc *DashboardController) GetDashboardBooks(
	ctx context.Context,
	user *User,
) (*DashboardResponse, error) {
	log := dc.log.Function("GetDashboardBooks")

	history, err := dc.history.Get(ctx, user.ID)
	if err != nil {
		log.Warn("failed to load shown history, proceeding without", "userID", user.ID, "error", err)
		history = services.History{}
	}

	excluded := append([]string{}, history.ExcludedKeys()...)

	genrePool := dc.fetchGenrePools(ctx, user.FavoriteGenres, excluded)

	chosen := make([]BookCandidate, 0, dashboardLimit)
	seen := make(map[string]struct{}, dashboardLimit)
	for _, key := range excluded {
		seen[key] = struct{}{}
	}

	dc.shuffle(genrePool)
	for _, book := range genrePool {
		if len(chosen) == dashboardLimit {
			break
		}
		if _, dup := seen[book.BookKey]; dup {
			continue
		}
		seen[book.BookKey] = struct{}{}
		chosen = append(chosen, BookCandidate{BookDetails: book})
	}

	usedFallback := len(chosen) < minGenreBooks

	if len(chosen) < dashboardLimit {
		chosen = dc.fillFromSubjects(ctx, user.FavoriteGenres, chosen, seen)
	}
	if len(chosen) < dashboardLimit {
		chosen = dc.fillFromRandomTiers(ctx, chosen, seen)
	}

	dc.annotate(ctx, chosen)

	response := &DashboardResponse{
		UsedFallback: usedFallback,
	}

	if len(chosen) > 0 {
		featured := chosen[0]
		dc.backfillDescription(&featured)
		response.Featured = &featured
		response.Books = chosen[1:]
	}

	dc.recordShown(ctx, user, history, chosen)

	return response, nil
}

// fetchGenrePools loads the reviewed and custom genre-matched pools
// concurrently. Either pool failing degrades to whatever the other returned.
func (dc *DashboardController) fetchGenrePools(
	ctx context.Context,
	genres []string,
	excluded []string,
) []BookDetails {
	log := dc.log.Function("fetchGenrePools")

	if len(genres) == 0 {
		return nil
	}

	poolSize := dashboardLimit * 2

	var (
		wg       sync.WaitGroup
		reviewed []ReviewedBook
		custom   []CustomBook
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		reviewed, err = dc.reviewedBookRepo.GetByGenres(ctx, genres, excluded, poolSize)
		if err != nil {
			log.Warn("failed to fetch reviewed genre pool", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		custom, err = dc.customBookRepo.GetByGenres(ctx, genres, excluded, poolSize)
		if err != nil {
			log.Warn("failed to fetch custom genre pool", "error", err)
		}
	}()
	wg.Wait()

	pool := make([]BookDetails, 0, len(reviewed)+len(custom))
	for i := range reviewed {
		pool = append(pool, reviewed[i].ToDetails())
	}
	for i := range custom {
		pool = append(pool, custom[i].ToDetails())
	}

	return pool
}

// fillFromSubjects tops the set up with catalog works from the user's
// favorite genres, visited in random order. Catalog failures skip to the
// next genre.
func (dc *DashboardController) fillFromSubjects(
	ctx context.Context,
	genres []string,
	chosen []BookCandidate,
	seen map[string]struct{},
) []BookCandidate {
	log := dc.log.Function("fillFromSubjects")

	shuffled := append([]string{}, genres...)
	dc.shuffleStrings(shuffled)

	for _, genre := range shuffled {
		if len(chosen) == dashboardLimit {
			break
		}

		works, err := dc.catalog.GetSubjectWorks(utils.GenreSlug(genre), subjectFetch)
		if err != nil {
			log.Warn("failed to fetch subject works", "genre", genre, "error", err)
			continue
		}

		chosen = dc.takeSubjectWorks(works, genre, chosen, seen)
	}

	return chosen
}

// fillFromRandomTiers is the last resort: random reviewed books, then random
// custom books, then random catalog subjects.
func (dc *DashboardController) fillFromRandomTiers(
	ctx context.Context,
	chosen []BookCandidate,
	seen map[string]struct{},
) []BookCandidate {
	log := dc.log.Function("fillFromRandomTiers")

	missing := dashboardLimit - len(chosen)
	if missing <= 0 {
		return chosen
	}

	exclude := make([]string, 0, len(seen))
	for key := range seen {
		exclude = append(exclude, key)
	}

	reviewed, err := dc.reviewedBookRepo.GetRandom(ctx, exclude, missing)
	if err != nil {
		log.Warn("failed to fetch random reviewed books", "error", err)
	}
	for i := range reviewed {
		if len(chosen) == dashboardLimit {
			return chosen
		}
		if _, dup := seen[reviewed[i].BookKey]; dup {
			continue
		}
		seen[reviewed[i].BookKey] = struct{}{}
		chosen = append(chosen, BookCandidate{BookDetails: reviewed[i].ToDetails()})
	}

	if len(chosen) < dashboardLimit {
		custom, err := dc.customBookRepo.GetRandom(ctx, exclude, dashboardLimit-len(chosen))
		if err != nil {
			log.Warn("failed to fetch random custom books", "error", err)
		}
		for i := range custom {
			if len(chosen) == dashboardLimit {
				return chosen
			}
			if _, dup := seen[custom[i].BookKey]; dup {
				continue
			}
			seen[custom[i].BookKey] = struct{}{}
			chosen = append(chosen, BookCandidate{BookDetails: custom[i].ToDetails()})
		}
	}

	if len(chosen) < dashboardLimit {
		subject := randomSubjects[dc.intn(len(randomSubjects))]
		works, err := dc.catalog.GetSubjectWorks(subject, subjectFetch)
		if err != nil {
			log.Warn("failed to fetch random subject works", "subject", subject, "error", err)
			return chosen
		}
		chosen = dc.takeSubjectWorks(works, subject, chosen, seen)
	}

	return chosen
}

func (dc *DashboardController) takeSubjectWorks(
	works []services.SubjectWork,
	genre string,
	chosen []BookCandidate,
	seen map[string]struct{},
) []BookCandidate {
	for _, work := range works {
		if len(chosen) == dashboardLimit {
			break
		}

		key := utils.NormalizeWorkKey(work.Key)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		details := BookDetails{
			BookKey:  key,
			Title:    work.Title,
			Author:   "Unknown Author",
			CoverImg: dc.catalog.CoverURL(work.CoverID),
			Genre:    []string{genre},
			Source:   SourceAPI,
		}
		if len(work.Authors) > 0 && work.Authors[0].Name != "" {
			details.Author = work.Authors[0].Name
		}

		chosen = append(chosen, BookCandidate{BookDetails: details})
	}

	return chosen
}

// annotate attaches review stats; a catalog-sourced book with no reviews is
// flagged as new. Reviewed and custom books are never new, they already live
// in the local catalog.
func (dc *DashboardController) annotate(ctx context.Context, books []BookCandidate) {
	log := dc.log.Function("annotate")

	keys := make([]string, 0, len(books))
	for i := range books {
		keys = append(keys, books[i].BookKey)
	}

	stats, err := dc.reviewRepo.StatsForKeys(ctx, keys)
	if err != nil {
		log.Warn("failed to annotate recommendations with stats", "error", err)
		stats = map[string]BookStats{}
	}

	for i := range books {
		if bookStats, ok := stats[books[i].BookKey]; ok && bookStats.Count > 0 {
			avg := bookStats.AvgRating
			books[i].AvgRating = &avg
			books[i].ReviewCount = bookStats.Count
		} else {
			books[i].IsNew = books[i].Source == SourceAPI
		}
	}
}

// backfillDescription fetches the featured book's description when the
// snapshot or subject listing lacked one. Catalog-sourced books only.
func (dc *DashboardController) backfillDescription(featured *BookCandidate) {
	log := dc.log.Function("backfillDescription")

	if featured.Source != SourceAPI || featured.Description != nil {
		return
	}

	work, err := dc.catalog.GetWork(featured.BookKey)
	if err != nil {
		log.Warn("failed to backfill featured description", "bookKey", featured.BookKey, "error", err)
		return
	}

	if work.Description != nil {
		description := work.Description.Value
		featured.Description = &description
	}
}

func (dc *DashboardController) recordShown(
	ctx context.Context,
	user *User,
	history services.History,
	chosen []BookCandidate,
) {
	log := dc.log.Function("recordShown")

	if len(chosen) == 0 {
		return
	}

	keys := make([]string, 0, len(chosen))
	for i := range chosen {
		keys = append(keys, chosen[i].BookKey)
	}

	history.Record(keys, dc.now())
	if err := dc.history.Put(ctx, user.ID, history); err != nil {
		log.Warn("failed to persist shown history", "userID", user.ID, "error", err)
	}
}

func (dc *DashboardController) GetDashboardMetrics(
	ctx context.Context,
	user *User,
) (*DashboardMetrics, error) {
	log := dc.log.Function("GetDashboardMetrics")

	metrics := &DashboardMetrics{}
	db := dc.db.SQLWithContext(ctx)

	counts := []struct {
		model any
		dest  *int64
	}{
		{&User{}, &metrics.Users},
		{&Review{}, &metrics.Reviews},
		{&ReviewedBook{}, &metrics.ReviewedBooks},
		{&CustomBook{}, &metrics.CustomBooks},
		{&Notification{}, &metrics.Notifications},
	}

	for _, count := range counts {
		if err := db.Model(count.model).Count(count.dest).Error; err != nil {
			return nil, log.Err("failed to collect dashboard metrics", err)
		}
	}

	return metrics, nil
}

func (dc *DashboardController) shuffle(books []BookDetails) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.rng.Shuffle(len(books), func(i, j int) {
		books[i], books[j] = books[j], books[i]
	})
}

func (dc *DashboardController) shuffleStrings(values []string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

func (dc *DashboardController) intn(n int) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.rng.Intn(n)
}
