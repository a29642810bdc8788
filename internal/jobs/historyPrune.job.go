package jobs

import (
	"context"
	"time"
	"wellread/internal/logger"
	"wellread/internal/services"
)

// HistoryPruneJob drops idle recommendation histories so the in-memory store
// does not grow with users who stopped browsing.
type HistoryPruneJob struct {
	history services.HistoryStore
	log     logger.Logger
}

func NewHistoryPruneJob(history services.HistoryStore) *HistoryPruneJob {
	return &HistoryPruneJob{
		history: history,
		log:     logger.New("historyPruneJob"),
	}
}

func (j *HistoryPruneJob) Name() string {
	return "HourlyHistoryPrune"
}

func (j *HistoryPruneJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	pruned := j.history.PruneIdle(ctx, time.Now())
	if pruned > 0 {
		log.Info("Pruned idle recommendation histories", "count", pruned)
	}

	return nil
}

func (j *HistoryPruneJob) Schedule() services.Schedule {
	return services.Hourly
}
