package jobs

import (
	"context"
	"time"
	"wellread/internal/logger"
	"wellread/internal/repositories"
	"wellread/internal/services"
)

// notificationRetention is how long read notifications are kept before the
// daily purge removes them. Unread notifications are never purged.
const notificationRetention = 90 * 24 * time.Hour

type NotificationCleanupJob struct {
	notificationRepo repositories.NotificationRepository
	log              logger.Logger
}

func NewNotificationCleanupJob(
	notificationRepo repositories.NotificationRepository,
) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		notificationRepo: notificationRepo,
		log:              logger.New("notificationCleanupJob"),
	}
}

func (j *NotificationCleanupJob) Name() string {
	return "DailyNotificationCleanup"
}

func (j *NotificationCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := time.Now().Add(-notificationRetention)
	purged, err := j.notificationRepo.PurgeReadOlderThan(ctx, cutoff)
	if err != nil {
		return log.Err("failed to purge read notifications", err)
	}

	if purged > 0 {
		log.Info("Purged read notifications", "count", purged, "cutoff", cutoff)
	}

	return nil
}

func (j *NotificationCleanupJob) Schedule() services.Schedule {
	return services.Daily
}
