package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oursaladish/saladish-backend/internal/auth"
)

type Handler struct {
	Pool *pgxpool.Pool
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{Pool: pool}
}

// Test confirms the caller passed both the identity and the admin gate.
func (h *Handler) Test(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Admin verified successfully",
		"user": fiber.Map{
			"id":   auth.UserID(c),
			"role": c.Locals(auth.LocalRole),
		},
	})
}

type latestUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type latestOrder struct {
	ID         string `json:"id"`
	TotalCents int64  `json:"total_cents"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type OverviewResponse struct {
	UsersTotal    int64         `json:"users_total"`
	VerifiedTotal int64         `json:"verified_total"`
	MenuTotal     int64         `json:"menu_total"`
	OrdersTotal   int64         `json:"orders_total"`
	LatestUsers   []latestUser  `json:"latest_users"`
	LatestOrders  []latestOrder `json:"latest_orders"`
}

func (h *Handler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var resp OverviewResponse

	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&resp.UsersTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed users_total")
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_verified`).Scan(&resp.VerifiedTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed verified_total")
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&resp.MenuTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed menu_total")
	}
	if err := h.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&resp.OrdersTotal); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed orders_total")
	}

	{
		rows, err := h.Pool.Query(ctx, `
			SELECT id::text, email, created_at::text
			FROM users
			ORDER BY created_at DESC
			LIMIT 20`)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users")
		}
		defer rows.Close()

		for rows.Next() {
			var u latestUser
			if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed latest_users")
			}
			resp.LatestUsers = append(resp.LatestUsers, u)
		}
	}

	{
		rows, err := h.Pool.Query(ctx, `
			SELECT id::text, total_cents, status, created_at::text
			FROM orders
			ORDER BY created_at DESC
			LIMIT 20`)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed latest_orders")
		}
		defer rows.Close()

		for rows.Next() {
			var o latestOrder
			if err := rows.Scan(&o.ID, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed latest_orders")
			}
			resp.LatestOrders = append(resp.LatestOrders, o)
		}
	}

	return c.JSON(resp)
}
