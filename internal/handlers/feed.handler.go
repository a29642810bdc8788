package handlers

import (
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type FeedHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewFeedHandler(app app.App, router fiber.Router) *FeedHandler {
	log := logger.New("handlers").File("feed_handler")
	return &FeedHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *FeedHandler) Register() {
	feed := h.router.Group("/feed")

	protected := feed.Group("/", h.middleware.RequireAuth())
	protected.Get("/", h.getCommunityFeed)
}

func (h *FeedHandler) getCommunityFeed(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviews, err := h.controllers.Feed.GetCommunityFeed(c.UserContext(), user, c.Query("genre"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}
