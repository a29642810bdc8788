package handlers

import (
	"wellread/internal/app"
	"wellread/internal/controllers"
	"wellread/internal/handlers/middleware"
	"wellread/internal/logger"

	bookController "wellread/internal/controllers/books"

	"github.com/gofiber/fiber/v2"
)

type BookHandler struct {
	Handler
	controllers controllers.Controllers
}

func NewBookHandler(app app.App, router fiber.Router) *BookHandler {
	log := logger.New("handlers").File("book_handler")
	return &BookHandler{
		controllers: app.Controllers,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *BookHandler) Register() {
	books := h.router.Group("/books")

	protected := books.Group("/", h.middleware.RequireAuth())
	protected.Get("/search", h.searchBooks)
	protected.Get("/custom", h.listCustomBooks)
	protected.Post("/custom", h.createCustomBook)
	protected.Get("/:bookKey", h.getBookDetails)
}

func (h *BookHandler) searchBooks(c *fiber.Ctx) error {
	query := c.Query("q")

	results, err := h.controllers.Book.Search(c.UserContext(), query)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"books": results})
}

func (h *BookHandler) getBookDetails(c *fiber.Ctx) error {
	bookKey := c.Params("bookKey")

	book, err := h.controllers.Book.GetBookDetails(c.UserContext(), bookKey)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"book": book})
}

func (h *BookHandler) createCustomBook(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	var request bookController.CreateCustomBookRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	book, err := h.controllers.Book.CreateCustomBook(c.UserContext(), user, request)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"book": book})
}

func (h *BookHandler) listCustomBooks(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return unauthorized(c)
	}

	books, err := h.controllers.Book.ListCustomBooks(c.UserContext(), user)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(fiber.Map{"books": books})
}
