package repositories

import (
	"wellread/internal/database"
)

type Repository struct {
	User         UserRepository
	ReviewedBook ReviewedBookRepository
	CustomBook   CustomBookRepository
	Review       ReviewRepository
	Comment      CommentRepository
	Follower     FollowerRepository
	Notification NotificationRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(db),
		ReviewedBook: NewReviewedBookRepository(db),
		CustomBook:   NewCustomBookRepository(db),
		Review:       NewReviewRepository(db),
		Comment:      NewCommentRepository(db),
		Follower:     NewFollowerRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
