package handlers

import (
	"context"
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"
	"wellread/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	log := logger.New("handlers").File("user_handler")
	return &UserHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users")

	protected := users.Group("/", h.middleware.RequireAuth())
	protected.Get("/me", h.getCurrentUser)
	protected.Put("/me", h.updateProfile)
	protected.Get("/search", h.searchUsers)
	protected.Get("/:id", h.getProfile)
	protected.Get("/:id/follow", h.getFollowStatus)
	protected.Post("/:id/follow", h.follow)
	protected.Put("/:id/follow", h.toggleFollow)
	protected.Delete("/:id/follow", h.unfollow)
	protected.Get("/:id/followers", h.getFollowers)
	protected.Get("/:id/following", h.getFollowing)
}

// getCurrentUser returns information about the currently authenticated user
func (h *UserHandler) getCurrentUser(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	return c.JSON(fiber.Map{"user": user.ToProfile()})
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var request models.ProfileUpdateRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := h.controllers.User.UpdateProfile(c.UserContext(), user, request)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"user": updated.ToProfile()})
}

func (h *UserHandler) searchUsers(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	results, err := h.controllers.User.SearchUsers(c.UserContext(), user, c.Query("q"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"users": results})
}

func (h *UserHandler) getProfile(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	profile, err := h.controllers.User.GetProfile(c.UserContext(), user.ID, userID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(profile)
}

func (h *UserHandler) getFollowStatus(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	following, err := h.controllers.User.GetFollowStatus(c.UserContext(), user.ID, targetID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"isFollowing": following})
}

func (h *UserHandler) follow(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	if err := h.controllers.User.Follow(c.UserContext(), user, targetID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) unfollow(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	if err := h.controllers.User.Unfollow(c.UserContext(), user, targetID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) toggleFollow(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	targetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	following, err := h.controllers.User.ToggleFollow(c.UserContext(), user, targetID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"isFollowing": following})
}

func (h *UserHandler) getFollowers(c *fiber.Ctx) error {
	return h.listFollows(c, h.controllers.User.GetFollowers)
}

func (h *UserHandler) getFollowing(c *fiber.Ctx) error {
	return h.listFollows(c, h.controllers.User.GetFollowing)
}

func (h *UserHandler) listFollows(
	c *fiber.Ctx,
	list func(ctx context.Context, userID uuid.UUID, page int) ([]models.FollowEntry, error),
) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	page := c.QueryInt("page", 1)

	entries, err := list(c.UserContext(), userID, page)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"users": entries})
}
