package feedController

import (
	"context"
	"math/rand"
	"sync"
	"time"
	"wellread/internal/logger"
	. "wellread/internal/models"
	"wellread/internal/repositories"
	"wellread/internal/utils"

	"github.com/google/uuid"
)

const (
	feedFetchLimit = 30
	feedMinimum    = 7
)

type FeedController struct {
	reviewRepo repositories.ReviewRepository
	log        logger.Logger

	rng *rand.Rand
	mu  sync.Mutex
}

type FeedControllerInterface interface {
	GetCommunityFeed(ctx context.Context, user *User, genreFilter string) ([]ReviewWithBook, error)
}

func New(repos repositories.Repository) FeedControllerInterface {
	return NewWithRandom(repos, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewWithRandom(repos repositories.Repository, rng *rand.Rand) FeedControllerInterface {
	return &FeedController{
		reviewRepo: repos.Review,
		log:        logger.New("feedController"),
		rng:        rng,
	}
}

// GetCommunityFeed returns the most recent reviews, filtered to the user's
// favorite genres (or an explicit genre when one is given). Matching reviews
// come first; when they fall short of the minimum, random non-matching
// recents top the feed up, deduplicated by review id.
func (fc *FeedController) GetCommunityFeed(
	ctx context.Context,
	user *User,
	genreFilter string,
) ([]ReviewWithBook, error) {
	log := fc.log.Function("GetCommunityFeed")

	recent, err := fc.reviewRepo.GetRecent(ctx, feedFetchLimit)
	if err != nil {
		return nil, log.Err("failed to fetch recent reviews", err)
	}

	filter := []string(user.FavoriteGenres)
	if genreFilter != "" {
		filter = []string{genreFilter}
	}
	if len(filter) == 0 {
		return recent, nil
	}
	matched := make([]ReviewWithBook, 0, len(recent))
	rest := make([]ReviewWithBook, 0, len(recent))
	seen := make(map[uuid.UUID]struct{}, len(recent))

	for _, review := range recent {
		if _, dup := seen[review.ID]; dup {
			continue
		}
		seen[review.ID] = struct{}{}

		if utils.GenresOverlap(review.Genre, filter) {
			matched = append(matched, review)
		} else {
			rest = append(rest, review)
		}
	}

	if len(matched) >= feedMinimum {
		return matched, nil
	}

	fc.shuffle(rest)
	for _, review := range rest {
		if len(matched) == feedMinimum {
			break
		}
		matched = append(matched, review)
	}

	return matched, nil
}

func (fc *FeedController) shuffle(reviews []ReviewWithBook) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.rng.Shuffle(len(reviews), func(i, j int) {
		reviews[i], reviews[j] = reviews[j], reviews[i]
	})
}
