package handlers

import (
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewDashboardHandler(app app.App, router fiber.Router) *DashboardHandler {
	log := logger.New("handlers").File("dashboard_handler")
	return &DashboardHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DashboardHandler) Register() {
	dashboard := h.router.Group("/dashboard")

	protected := dashboard.Group("/", h.middleware.RequireAuth())
	protected.Get("/", h.getDashboardBooks)

	admin := protected.Group("/", h.middleware.RequireAdmin())
	admin.Get("/metrics", h.getDashboardMetrics)
}

func (h *DashboardHandler) getDashboardBooks(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	response, err := h.controllers.Dashboard.GetDashboardBooks(c.UserContext(), user)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(response)
}

func (h *DashboardHandler) getDashboardMetrics(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	metrics, err := h.controllers.Dashboard.GetDashboardMetrics(c.UserContext(), user)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(metrics)
}
