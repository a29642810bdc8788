package controllers

import (
	"wellread/config"
	"wellread/internal/database"
	"wellread/internal/events"
	"wellread/internal/repositories"
	"wellread/internal/services"

	bookController "wellread/internal/controllers/books"
	commentController "wellread/internal/controllers/comments"
	dashboardController "wellread/internal/controllers/dashboard"
	feedController "wellread/internal/controllers/feed"
	notificationController "wellread/internal/controllers/notifications"
	reviewController "wellread/internal/controllers/reviews"
	userController "wellread/internal/controllers/users"
)

type Controllers struct {
	Book         bookController.BookControllerInterface
	Review       reviewController.ReviewControllerInterface
	Comment      commentController.CommentControllerInterface
	User         userController.UserControllerInterface
	Dashboard    dashboardController.DashboardControllerInterface
	Feed         feedController.FeedControllerInterface
	Notification notificationController.NotificationControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	notifications := notificationController.New(repos, eventBus)
	books := bookController.New(repos, services, config, db)

	return Controllers{
		Book:         books,
		Review:       reviewController.New(repos, services, books, notifications, db),
		Comment:      commentController.New(repos, services, notifications, db),
		User:         userController.New(repos, notifications, db),
		Dashboard:    dashboardController.New(repos, services, config, db),
		Feed:         feedController.New(repos),
		Notification: notifications,
	}
}
