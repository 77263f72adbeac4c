package menu

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an item id does not resolve.
var ErrNotFound = errors.New("menu item not found")

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const itemColumns = `id::text, name, price_cents, description, image, category, available, created_at, updated_at`

func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+itemColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, req *ItemRequest) (*Item, error) {
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	var it Item
	err := r.Pool.QueryRow(
		ctx,
		`INSERT INTO menu_items (name, price_cents, description, image, category, available)
         VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'General'), $6)
         RETURNING `+itemColumns,
		req.Name, req.PriceCents, req.Description, req.Image, req.Category, available,
	).Scan(
		&it.ID, &it.Name, &it.PriceCents, &it.Description, &it.Image,
		&it.Category, &it.Available, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) Update(ctx context.Context, id string, req *ItemRequest) (*Item, error) {
	var it Item
	err := r.Pool.QueryRow(
		ctx,
		`UPDATE menu_items
         SET name = COALESCE(NULLIF($2, ''), name),
             price_cents = CASE WHEN $3 > 0 THEN $3 ELSE price_cents END,
             description = COALESCE(NULLIF($4, ''), description),
             image = COALESCE(NULLIF($5, ''), image),
             category = COALESCE(NULLIF($6, ''), category),
             available = COALESCE($7, available),
             updated_at = now()
         WHERE id = $1::uuid
         RETURNING `+itemColumns,
		id, req.Name, req.PriceCents, req.Description, req.Image, req.Category, req.Available,
	).Scan(
		&it.ID, &it.Name, &it.PriceCents, &it.Description, &it.Image,
		&it.Category, &it.Available, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1::uuid`, id)
	return err
}

func scanItem(rows pgx.Rows, it *Item) error {
	return rows.Scan(
		&it.ID, &it.Name, &it.PriceCents, &it.Description, &it.Image,
		&it.Category, &it.Available, &it.CreatedAt, &it.UpdatedAt,
	)
}
