package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oursaladish/saladish-backend/internal/auth"
	"github.com/oursaladish/saladish-backend/internal/mailer"
)

var (
	// ErrNotVerified blocks login until the email has been confirmed.
	ErrNotVerified = errors.New("email not verified")
	// ErrInvalidCredentials is returned on a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid covers unknown, expired, and consumed tokens of
	// both kinds (opaque verification and signed reset).
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrMissingFields is returned when required input is empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrEmailDelivery surfaces a mail failure when EMAIL_REQUIRED is on.
	ErrEmailDelivery = errors.New("email delivery failed")
)

// VerificationTTL bounds how long a registration can stay confirmable.
const VerificationTTL = 24 * time.Hour

// Service orchestrates the account lifecycle:
// register -> verify -> login -> forgot/reset password.
type Service struct {
	store  Store
	hasher *auth.PasswordHasher
	issuer *auth.TokenIssuer
	mail   mailer.Sender

	// FrontendURL and BackendURL build the links embedded in emails.
	FrontendURL string
	BackendURL  string
	// EmailRequired makes a failed verification email fail the whole
	// registration response. The user record is still committed.
	EmailRequired bool
}

func NewService(store Store, hasher *auth.PasswordHasher, issuer *auth.TokenIssuer, mail mailer.Sender) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		mail:   mail,
	}
}

// LoginResult is what a successful login returns: a non-sensitive user
// summary plus the session token.
type LoginResult struct {
	User  Summary `json:"user"`
	Token string  `json:"token"`
}

// Register creates an unverified user and emails a verification link.
// The email outcome does not roll back the created record.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return ErrMissingFields
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token, err := auth.NewVerificationToken()
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	expires := time.Now().Add(VerificationTTL)

	u := &User{
		Name:                  name,
		Email:                 email,
		PasswordHash:          hash,
		Role:                  RoleUser,
		IsVerified:            false,
		VerificationToken:     &token,
		VerificationExpiresAt: &expires,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return err
	}

	verifyLink := s.BackendURL + "/api/verify/" + token
	html := fmt.Sprintf(`
      <h2>Welcome to Our Saladish, %s!</h2>
      <p>Thanks for registering! Please confirm your email by clicking below:</p>
      <a href="%s" target="_blank" style="color:#00bfa6;font-weight:bold;">Verify Email</a>
      <p>This link expires in 24 hours. If you didn't request this, please ignore this email.</p>`,
		name, verifyLink)

	if err := s.mail.Send(ctx, email, "Verify your email - Our Saladish", html); err != nil {
		log.Printf("users: verification email to %s failed: %v", email, err)
		if s.EmailRequired {
			return ErrEmailDelivery
		}
	}
	return nil
}

// VerifyEmail consumes an opaque verification token. One-shot: the token
// is cleared together with the state flip, so a second presentation
// fails the lookup.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}

	u, err := s.store.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if u.VerificationExpiresAt != nil && time.Now().After(*u.VerificationExpiresAt) {
		return nil, ErrTokenInvalid
	}

	if err := s.store.MarkVerified(ctx, u.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationExpiresAt = nil
	return u, nil
}

// Login authenticates a verified user and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.IsVerified {
		return nil, ErrNotVerified
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.IssueSession(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &LoginResult{User: u.Summary(), Token: token}, nil
}

// ForgotPassword emails a short-lived signed reset link. The user record
// is not mutated.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingFields
	}

	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.issuer.IssueReset(u.ID, u.TokenVersion)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	resetLink := s.FrontendURL + "/reset-password/" + token
	html := fmt.Sprintf(`
      <h3>Reset Your Password</h3>
      <p>Click the link below to reset your password:</p>
      <a href="%s" target="_blank" style="color:#00bfa6;font-weight:bold;">Reset Password</a>
      <p>This link will expire in 1 hour.</p>`,
		resetLink)

	if err := s.mail.Send(ctx, email, "Reset your password - Our Saladish", html); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword validates a signed reset token and replaces the stored
// hash. The token is bound to the user's token version; the version bump
// on update makes it single-use.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return ErrMissingFields
	}

	u, err := s.resolveResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	return nil
}

// VerifyResetToken reports whether a reset token would be accepted,
// without changing any state.
func (s *Service) VerifyResetToken(ctx context.Context, token string) error {
	_, err := s.resolveResetToken(ctx, token)
	return err
}

func (s *Service) resolveResetToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil || claims.TokenType != auth.TokenTypeReset {
		return nil, ErrTokenInvalid
	}

	u, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if claims.TokenVersion != u.TokenVersion {
		return nil, ErrTokenInvalid
	}
	return u, nil
}
