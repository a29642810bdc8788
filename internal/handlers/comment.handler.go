package handlers

import (
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CommentHandler struct {
	Handler
	controllers controllers.Controllers
}

type postCommentRequest struct {
	Text string `json:"text"`
}

func NewCommentHandler(app app.App, router fiber.Router) *CommentHandler {
	log := logger.New("handlers").File("comment_handler")
	return &CommentHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CommentHandler) Register() {
	comments := h.router.Group("/comments")

	protected := comments.Group("/", h.middleware.RequireAuth())
	protected.Post("/review/:reviewID", h.postComment)
	protected.Get("/review/:reviewID", h.getComments)
	protected.Post("/:id/like", h.toggleLike)
	protected.Delete("/:id", h.deleteComment)
}

func (h *CommentHandler) postComment(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("reviewID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	var request postCommentRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	comment, err := h.controllers.Comment.Post(c.UserContext(), user, reviewID, request.Text)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

func (h *CommentHandler) getComments(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	reviewID, err := uuid.Parse(c.Params("reviewID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid review id",
		})
	}

	page := c.QueryInt("page", 1)

	comments, err := h.controllers.Comment.GetComments(c.UserContext(), user.ID, reviewID, page)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"comments": comments})
}

func (h *CommentHandler) toggleLike(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid comment id",
		})
	}

	result, err := h.controllers.Comment.ToggleLike(c.UserContext(), user, commentID)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(result)
}

func (h *CommentHandler) deleteComment(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	commentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid comment id",
		})
	}

	if err := h.controllers.Comment.Delete(c.UserContext(), user, commentID); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
