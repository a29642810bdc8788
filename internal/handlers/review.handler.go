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

type ReviewHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewReviewHandler(app app.App, router fiber.Router) *ReviewHandler {
	log := logger.New("handlers").File("review_handler")
	return &ReviewHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReviewHandler) Register() {
	reviews := h.router.Group("/reviews")

	protected := reviews.Group("/", h.middleware.RequireAuth())
	protected.Post("/book/:bookKey", h.createReview)
	protected.Get("/book/:bookKey", h.getReviewsByBook)
	protected.Get("/book/:bookKey/stats", h.getBookStats)
	protected.Get("/user/:userID", h.getReviewsByUser)
	protected.Put("/:id", h.updateReview)
	protected.Delete("/:id", h.deleteReview)
	protected.Get("/:id/reaction", h.getLikeStatus)
	protected.Post("/:id/like", h.likeReview)
	protected.Delete("/:id/like", h.removeLike)
	protected.Post("/:id/unlike", h.unlikeReview)
	protected.Delete("/:id/unlike", h.removeUnlike)
}

func (h *ReviewHandler) createReview(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var request models.CreateReviewRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	review, err := h.controllers.Review.Create(
		c.UserContext(),
		user,
		c.Params("bookKey"),
		request,
	)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) getReviewsByBook(c *fiber.Ctx) error {
	reviews, err := h.controllers.Review.GetByBook(c.UserContext(), c.Params("bookKey"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *ReviewHandler) getBookStats(c *fiber.Ctx) error {
	stats, err := h.controllers.Review.GetStats(c.UserContext(), c.Params("bookKey"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"stats": stats})
}

func (h *ReviewHandler) getReviewsByUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	reviews, err := h.controllers.Review.GetByUser(c.UserContext(), userID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"reviews": reviews})
}

func (h *ReviewHandler) updateReview(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	var request models.CreateReviewRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	review, err := h.controllers.Review.Update(c.UserContext(), user, reviewID, request)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) deleteReview(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	if err := h.controllers.Review.Delete(c.UserContext(), user, reviewID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReviewHandler) getLikeStatus(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	status, err := h.controllers.Review.GetLikeStatus(c.UserContext(), user, reviewID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(status)
}

func (h *ReviewHandler) likeReview(c *fiber.Ctx) error {
	return h.reactToReview(c, h.controllers.Review.Like)
}

func (h *ReviewHandler) unlikeReview(c *fiber.Ctx) error {
	return h.reactToReview(c, h.controllers.Review.Unlike)
}

func (h *ReviewHandler) removeLike(c *fiber.Ctx) error {
	return h.reactToReview(c, h.controllers.Review.RemoveLike)
}

func (h *ReviewHandler) removeUnlike(c *fiber.Ctx) error {
	return h.reactToReview(c, h.controllers.Review.RemoveUnlike)
}

func (h *ReviewHandler) reactToReview(
	c *fiber.Ctx,
	action func(ctx context.Context, user *models.User, reviewID uuid.UUID) error,
) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	if err := action(c.UserContext(), user, reviewID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
