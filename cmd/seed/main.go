package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oursaladish/saladish-backend/internal/auth"
)

// Seeds the admin account (created verified, bypassing the email flow)
// and the starter menu.
func main() {
	seedAdmin := flag.Bool("admin", false, "seed the admin user")
	seedMenu := flag.Bool("menu", false, "replace the menu with the starter items")
	flag.Parse()

	if !*seedAdmin && !*seedMenu {
		log.Fatal("nothing to do: pass -admin and/or -menu")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("error creating pgx pool: %v", err)
	}
	defer pool.Close()

	if *seedAdmin {
		runSeedAdmin(ctx, pool)
	}
	if *seedMenu {
		runSeedMenu(ctx, pool)
	}
}

func runSeedAdmin(ctx context.Context, pool *pgxpool.Pool) {
	email := envOr("ADMIN_EMAIL", "admin@oursaladish.com")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is not set")
	}

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		log.Fatalf("error checking admin: %v", err)
	}
	if exists {
		log.Printf("admin already exists: %s", email)
		return
	}

	hash, err := auth.NewPasswordHasher().Hash(password)
	if err != nil {
		log.Fatalf("error hashing admin password: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (name, email, password_hash, role, is_verified)
		VALUES ('Super Admin', $1, $2, 'admin', true)`,
		email, hash)
	if err != nil {
		log.Fatalf("error seeding admin: %v", err)
	}
	log.Printf("admin user seeded: %s", email)
}

func runSeedMenu(ctx context.Context, pool *pgxpool.Pool) {
	type seedItem struct {
		name        string
		priceCents  int64
		description string
	}
	items := []seedItem{
		{"Classic Caesar Salad", 899, "Crisp romaine, parmesan, croutons, creamy dressing."},
		{"Greek Salad", 949, "Feta cheese, kalamata olives, tomatoes, cucumbers, red onion."},
		{"Quinoa Power Bowl", 1099, "Quinoa, avocado, chickpeas, mixed greens, lemon-tahini dressing."},
	}

	if _, err := pool.Exec(ctx, `DELETE FROM menu_items`); err != nil {
		log.Fatalf("error clearing menu: %v", err)
	}
	for _, it := range items {
		if _, err := pool.Exec(ctx, `
			INSERT INTO menu_items (name, price_cents, description)
			VALUES ($1, $2, $3)`,
			it.name, it.priceCents, it.description); err != nil {
			log.Fatalf("error seeding menu item %q: %v", it.name, err)
		}
	}
	log.Printf("menu seeded with %d items", len(items))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
