package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an order id does not resolve.
var ErrNotFound = errors.New("order not found")

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) Insert(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, err
	}

	var addressJSON []byte
	if req.Address != nil {
		addressJSON, err = json.Marshal(req.Address)
		if err != nil {
			return nil, err
		}
	}

	method := req.PaymentMethod
	if method == "" {
		method = "COD"
	}

	o := &Order{
		UserID:        req.UserID,
		Items:         req.Items,
		Address:       req.Address,
		PaymentMethod: method,
		TotalCents:    req.TotalCents,
		Status:        StatusPending,
	}
	err = r.Pool.QueryRow(
		ctx,
		`INSERT INTO orders (user_id, items, address, payment_method, total_cents)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id::text, status, created_at`,
		req.UserID, itemsJSON, addressJSON, method, req.TotalCents,
	).Scan(&o.ID, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.Pool.Query(
		ctx,
		`SELECT id::text, user_id, items, address, payment_method, total_cents, status, created_at
         FROM orders
         ORDER BY created_at DESC
         LIMIT 500`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Order, error) {
	// Malformed ids would otherwise error inside the ::uuid cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.Pool.Query(
		ctx,
		`SELECT id::text, user_id, items, address, payment_method, total_cents, status, created_at
         FROM orders
         WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanOrder(rows)
}

func scanOrder(rows pgx.Rows) (*Order, error) {
	var (
		o           Order
		itemsJSON   []byte
		addressJSON []byte
	)
	if err := rows.Scan(
		&o.ID, &o.UserID, &itemsJSON, &addressJSON,
		&o.PaymentMethod, &o.TotalCents, &o.Status, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, err
	}
	if len(addressJSON) > 0 {
		o.Address = &Address{}
		if err := json.Unmarshal(addressJSON, o.Address); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
