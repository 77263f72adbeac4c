package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the credential store the lifecycle service runs against.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByVerificationToken(ctx context.Context, token string) (*User, error)
	MarkVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email unique index rejects a create.
	ErrDuplicateEmail = errors.New("user already exists")
)

const uniqueViolation = "23505"

const userColumns = `id::text, name, email, password_hash, role, is_verified,
       verification_token, verification_expires_at, token_version, created_at`

// Repository is the Postgres-backed Store.
type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

// Create inserts a new user. Concurrent registrations racing on the same
// email are serialized by the unique index; the loser gets
// ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, u *User) error {
	err := r.Pool.QueryRow(
		ctx,
		`INSERT INTO users (name, email, password_hash, role, is_verified, verification_token, verification_expires_at)
         VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'user'), $5, $6, $7)
         RETURNING id::text, token_version, created_at`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.IsVerified, u.VerificationToken, u.VerificationExpiresAt,
	).Scan(&u.ID, &u.TokenVersion, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
}

func (r *Repository) FindByVerificationToken(ctx context.Context, token string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
}

// MarkVerified flips the user to verified and clears the token in one
// statement, making consumption one-shot.
func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(
		ctx,
		`UPDATE users
         SET is_verified = true, verification_token = NULL, verification_expires_at = NULL
         WHERE id = $1::uuid AND verification_token IS NOT NULL`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the hash wholesale and bumps token_version so
// outstanding reset tokens stop working.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.Pool.Exec(
		ctx,
		`UPDATE users SET password_hash = $2, token_version = token_version + 1 WHERE id = $1::uuid`,
		id, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.VerificationToken,
		&u.VerificationExpiresAt,
		&u.TokenVersion,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
