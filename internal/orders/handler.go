package orders

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Order must contain at least one item")
	}

	o, err := h.Repo.Insert(c.UserContext(), &req)
	if err != nil {
		log.Printf("orders: insert failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Server Error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "order": o})
}

func (h *Handler) List(c *fiber.Ctx) error {
	out, err := h.Repo.List(c.UserContext())
	if err != nil {
		log.Printf("orders: list failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Server Error")
	}
	if out == nil {
		out = []Order{}
	}
	return c.JSON(fiber.Map{"success": true, "orders": out})
}

// Receipt renders a PDF receipt for a single order. Admin-gated by the
// router.
func (h *Handler) Receipt(c *fiber.Ctx) error {
	o, err := h.Repo.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		log.Printf("orders: receipt lookup failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Server Error")
	}

	pdf, err := renderReceipt(o)
	if err != nil {
		log.Printf("orders: receipt render failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render receipt")
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `inline; filename="order-`+o.ID+`.pdf"`)
	return c.Send(pdf)
}
