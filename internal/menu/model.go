package menu

import "time"

// Item is a dish on the public menu.
type Item struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PriceCents  int64     `db:"price_cents" json:"price_cents"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	Category    string    `db:"category" json:"category"`
	Available   bool      `db:"available" json:"available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ItemRequest struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Available   *bool  `json:"available"`
}
