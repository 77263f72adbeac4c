package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oursaladish/saladish-backend/internal/admin"
	"github.com/oursaladish/saladish-backend/internal/menu"
	"github.com/oursaladish/saladish-backend/internal/orders"
	"github.com/oursaladish/saladish-backend/internal/users"
)

// Router wires injected handlers and middleware onto the app. AuthMW
// attaches identity; AdminMW is the role predicate evaluated after it.
type Router struct {
	UsersHandler  *users.Handler
	MenuHandler   *menu.Handler
	OrdersHandler *orders.Handler
	AdminHandler  *admin.Handler
	AuthMW        fiber.Handler
	AdminMW       fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Account lifecycle (public)
	api.Post("/register", r.UsersHandler.Register)
	api.Get("/verify/:token", r.UsersHandler.VerifyEmail)
	api.Post("/login", r.UsersHandler.Login)
	api.Post("/forgot-password", r.UsersHandler.ForgotPassword)
	api.Post("/reset-password/:token", r.UsersHandler.ResetPassword)
	api.Get("/reset-password/:token/verify", r.UsersHandler.VerifyResetToken)

	// Menu: public read, admin mutation
	api.Get("/menu", r.MenuHandler.List)
	api.Post("/menu", r.AuthMW, r.AdminMW, r.MenuHandler.Create)
	api.Put("/menu/:id", r.AuthMW, r.AdminMW, r.MenuHandler.Update)
	api.Delete("/menu/:id", r.AuthMW, r.AdminMW, r.MenuHandler.Delete)

	// Orders
	api.Post("/orders", r.OrdersHandler.Create)
	api.Get("/orders", r.OrdersHandler.List)
	api.Get("/orders/:id/receipt", r.AuthMW, r.AdminMW, r.OrdersHandler.Receipt)

	// Admin diagnostics
	api.Get("/admin/test", r.AuthMW, r.AdminMW, r.AdminHandler.Test)
	api.Get("/admin/overview", r.AuthMW, r.AdminMW, r.AdminHandler.Overview)
}
