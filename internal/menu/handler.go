package menu

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oursaladish/saladish-backend/internal/audit"
	"github.com/oursaladish/saladish-backend/internal/auth"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// List is public; everything else is admin-gated by the router.
func (h *Handler) List(c *fiber.Ctx) error {
	items, err := h.Repo.List(c.UserContext())
	if err != nil {
		log.Printf("menu: list failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch menu")
	}
	if items == nil {
		items = []Item{}
	}
	return c.JSON(fiber.Map{"success": true, "menu": items})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Name is required")
	}
	if req.PriceCents <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Price must be greater than zero")
	}

	it, err := h.Repo.Insert(c.UserContext(), &req)
	if err != nil {
		log.Printf("menu: insert failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to add item")
	}

	h.auditMutation(c, "create", it.ID)

	return c.JSON(fiber.Map{"success": true, "menuItem": it})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	it, err := h.Repo.Update(c.UserContext(), id, &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}
		log.Printf("menu: update failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update item")
	}

	h.auditMutation(c, "update", it.ID)

	return c.JSON(fiber.Map{"success": true, "menuItem": it})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.Repo.Delete(c.UserContext(), id); err != nil {
		log.Printf("menu: delete failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete item")
	}

	h.auditMutation(c, "delete", id)

	return c.JSON(fiber.Map{"success": true, "message": "Item deleted successfully"})
}

func (h *Handler) auditMutation(c *fiber.Ctx, op, itemID string) {
	userID := auth.UserID(c)
	ip := c.IP()
	entry := audit.Entry{
		Action:     audit.ActionMenuMutated,
		EntityType: "menu_item",
		EntityID:   &itemID,
		IP:         &ip,
		Metadata:   []byte(`{"op":"` + op + `"}`),
	}
	if userID != "" {
		entry.UserID = &userID
	}

	pool := h.Repo.Pool
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := audit.Write(ctx, pool, entry); err != nil {
			log.Printf("menu: audit write failed: %v", err)
		}
	}()
}
