package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oursaladish/saladish-backend/internal/admin"
	"github.com/oursaladish/saladish-backend/internal/auth"
	"github.com/oursaladish/saladish-backend/internal/mailer"
	"github.com/oursaladish/saladish-backend/internal/menu"
	"github.com/oursaladish/saladish-backend/internal/orders"
	"github.com/oursaladish/saladish-backend/internal/router"
	"github.com/oursaladish/saladish-backend/internal/users"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	secret := mustJWTSecret()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancel()
		log.Fatalf("error pinging database: %v", err)
	}
	cancel()

	production := strings.EqualFold(os.Getenv("ENV"), "production")

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			} else if !production {
				message = err.Error()
			}
			if code == fiber.StatusInternalServerError {
				log.Printf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
				if production {
					message = "internal server error"
				}
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Our Saladish Backend is Running Successfully!",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		database := "Connected"
		hctx, hcancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer hcancel()
		if err := pool.Ping(hctx); err != nil {
			database = "Disconnected"
		}
		env := os.Getenv("ENV")
		if env == "" {
			env = "development"
		}
		return c.JSON(fiber.Map{
			"status":      "Healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": env,
			"database":    database,
		})
	})

	issuer := auth.NewTokenIssuer(secret)
	hasher := auth.NewPasswordHasher()
	sender := buildMailer()

	userSvc := users.NewService(users.NewRepository(pool), hasher, issuer, sender)
	userSvc.FrontendURL = envOr("FRONTEND_URL", "http://localhost:3000")
	userSvc.BackendURL = envOr("BACKEND_URL", "http://localhost:5000")
	userSvc.EmailRequired = strings.EqualFold(os.Getenv("EMAIL_REQUIRED"), "true")

	r := &router.Router{
		UsersHandler:  users.NewHandler(userSvc, pool),
		MenuHandler:   menu.NewHandler(menu.NewRepository(pool)),
		OrdersHandler: orders.NewHandler(orders.NewRepository(pool)),
		AdminHandler:  admin.NewHandler(pool),
		AuthMW:        auth.RequireAuth(issuer),
		AdminMW:       auth.RequireAdmin(),
	}
	r.RegisterRoutes(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Println("Listening on port", port)
	log.Fatal(app.Listen(":" + port))
}

func mustJWTSecret() []byte {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return []byte(secret)
}

func buildMailer() mailer.Sender {
	if os.Getenv("BREVO_API_KEY") == "" {
		log.Println("BREVO_API_KEY not set; email delivery disabled, logging instead")
		return mailer.LogSender{}
	}
	return mailer.NewBrevoFromEnv()
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s", c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}
