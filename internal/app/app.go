package app

import (
	"context"
	"wellread/config"
	"wellread/internal/controllers"
	"wellread/internal/database"
	"wellread/internal/events"
	"wellread/internal/handlers/middleware"
	"wellread/internal/jobs"
	"wellread/internal/logger"
	"wellread/internal/repositories"
	"wellread/internal/services"
	"wellread/internal/websockets"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	Services     services.Service
	Repositories repositories.Repository
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	repos := repositories.New(db)

	service, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket, err := websockets.New(db, eventBus, repos.User, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config, repos)
	controllers := controllers.New(service, repos, eventBus, config, db)

	if config.SchedulerEnabled {
		historyPruneJob := jobs.NewHistoryPruneJob(service.History)
		if err := service.Scheduler.AddJob(historyPruneJob); err != nil {
			return &App{}, log.Err("failed to register history prune job", err)
		}
		log.Info("Registered history prune job with scheduler")

		notificationCleanupJob := jobs.NewNotificationCleanupJob(repos.Notification)
		if err := service.Scheduler.AddJob(notificationCleanupJob); err != nil {
			return &App{}, log.Err("failed to register notification cleanup job", err)
		}
		log.Info("Registered notification cleanup job with scheduler")

		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:     db,
		Config:       config,
		Middleware:   middleware,
		Websocket:    websocket,
		EventBus:     eventBus,
		Services:     service,
		Repositories: repos,
		Controllers:  controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.OpenLibrary,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.History,
		a.Repositories.User,
		a.Repositories.ReviewedBook,
		a.Repositories.CustomBook,
		a.Repositories.Review,
		a.Repositories.Comment,
		a.Repositories.Follower,
		a.Repositories.Notification,
		a.Controllers.Book,
		a.Controllers.Review,
		a.Controllers.Comment,
		a.Controllers.User,
		a.Controllers.Dashboard,
		a.Controllers.Feed,
		a.Controllers.Notification,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
