package handlers

import (
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	log := logger.New("handlers").File("notification_handler")
	return &NotificationHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications")

	protected := notifications.Group("/", h.middleware.RequireAuth())
	protected.Get("/", h.listNotifications)
	protected.Get("/unread-count", h.getUnreadCount)
	protected.Put("/read-all", h.markAllRead)
	protected.Put("/:id/read", h.markRead)
}

func (h *NotificationHandler) listNotifications(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	page := c.QueryInt("page", 1)

	notifications, err := h.controllers.Notification.List(c.UserContext(), user.ID, page)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) getUnreadCount(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	count, err := h.controllers.Notification.UnreadCount(c.UserContext(), user.ID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"unreadCount": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification id",
		})
	}

	if err := h.controllers.Notification.MarkRead(c.UserContext(), user.ID, notificationID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	if err := h.controllers.Notification.MarkAllRead(c.UserContext(), user.ID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
