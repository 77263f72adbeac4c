package users

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oursaladish/saladish-backend/internal/audit"
)

// Handler exposes the account lifecycle over HTTP.
type Handler struct {
	Svc *Service
	// Pool is used for best-effort audit writes; nil disables auditing.
	Pool *pgxpool.Pool
}

func NewHandler(svc *Service, pool *pgxpool.Pool) *Handler {
	return &Handler{Svc: svc, Pool: pool}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Password string `json:"password"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)

	err := h.Svc.Register(c.UserContext(), body.Name, body.Email, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields):
		return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
	case errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(fiber.StatusBadRequest, "User already exists")
	case errors.Is(err, ErrEmailDelivery):
		return fiber.NewError(fiber.StatusInternalServerError, "Server error during registration")
	default:
		log.Printf("users: register failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Server error during registration")
	}

	h.audit(c, audit.ActionRegistered, nil, body.Email)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful! Please check your email to confirm.",
	})
}

func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Params("token")

	u, err := h.Svc.VerifyEmail(c.UserContext(), token)
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenInvalid):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or expired verification link")
	default:
		log.Printf("users: verify failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Something went wrong during verification")
	}

	h.audit(c, audit.ActionVerified, &u.ID, u.Email)

	return c.Redirect(h.Svc.FrontendURL+"/login?verified=true", fiber.StatusFound)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Email = strings.TrimSpace(body.Email)

	res, err := h.Svc.Login(c.UserContext(), body.Email, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields):
		return fiber.NewError(fiber.StatusBadRequest, "Email and password are required")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "User not found")
	case errors.Is(err, ErrNotVerified):
		return fiber.NewError(fiber.StatusBadRequest, "Please confirm your email first")
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid credentials")
	default:
		log.Printf("users: login failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Login failed")
	}

	h.audit(c, audit.ActionLoggedIn, &res.User.ID, res.User.Email)

	return c.JSON(res)
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Email = strings.TrimSpace(body.Email)

	err := h.Svc.ForgotPassword(c.UserContext(), body.Email)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields):
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "User not found")
	default:
		log.Printf("users: forgot-password failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send reset email")
	}

	return c.JSON(fiber.Map{"message": "Password reset link sent to your email!"})
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	token := c.Params("token")

	var body resetRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err := h.Svc.ResetPassword(c.UserContext(), token, body.Password)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields):
		return fiber.NewError(fiber.StatusBadRequest, "Password is required")
	case errors.Is(err, ErrTokenInvalid):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or expired token")
	default:
		log.Printf("users: reset-password failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to reset password")
	}

	h.audit(c, audit.ActionPasswordReset, nil, "")

	return c.JSON(fiber.Map{"message": "Password updated successfully!"})
}

func (h *Handler) VerifyResetToken(c *fiber.Ctx) error {
	err := h.Svc.VerifyResetToken(c.UserContext(), c.Params("token"))
	if err != nil && !errors.Is(err, ErrTokenInvalid) {
		log.Printf("users: verify-reset-token failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to verify token")
	}
	return c.JSON(fiber.Map{"valid": err == nil})
}

func (h *Handler) audit(c *fiber.Ctx, action string, userID *string, email string) {
	if h.Pool == nil {
		return
	}

	ip := c.IP()
	ua := c.Get("User-Agent")
	entry := audit.Entry{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		IP:         &ip,
		UserAgent:  &ua,
	}
	if email != "" {
		entry.EntityID = &email
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := audit.Write(ctx, h.Pool, entry); err != nil {
			log.Printf("users: audit write failed: %v", err)
		}
	}()
}
