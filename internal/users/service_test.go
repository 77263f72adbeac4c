package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oursaladish/saladish-backend/internal/auth"
)

// fakeStore is an in-memory Store with the same uniqueness and
// one-shot-token semantics as the Postgres repository.
type fakeStore struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*User
	emails map[string]string // email -> id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:   make(map[string]*User),
		emails: make(map[string]string),
	}
}

func (f *fakeStore) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.emails[u.Email]; ok {
		return ErrDuplicateEmail
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	u.TokenVersion = 1
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	f.emails[u.Email] = u.ID
	return nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) FindByVerificationToken(_ context.Context, token string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) MarkVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.VerificationToken == nil {
		return ErrNotFound
	}
	u.IsVerified = true
	u.VerificationToken = nil
	u.VerificationExpiresAt = nil
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.TokenVersion++
	return nil
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeSender) Send(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway unreachable")
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no mail was sent")
	return f.sent[len(f.sent)-1]
}

func newTestService() (*Service, *fakeStore, *fakeSender) {
	store := newFakeStore()
	sender := &fakeSender{}
	svc := NewService(store, auth.NewPasswordHasher(), auth.NewTokenIssuer([]byte("test-secret")), sender)
	svc.FrontendURL = "https://www.oursaladish.shop"
	svc.BackendURL = "https://api.oursaladish.shop"
	return svc, store, sender
}

// extractToken pulls the path-final token out of the emailed link.
func extractToken(t *testing.T, html, marker string) string {
	t.Helper()
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0, "link marker %q not found in email", marker)
	rest := html[i+len(marker):]
	end := strings.IndexAny(rest, `"' <`)
	require.Greater(t, end, 0)
	return rest[:end]
}

func TestRegisterCreatesUnverifiedUserAndSendsMail(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))

	u, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.False(t, u.IsVerified)
	require.NotNil(t, u.VerificationToken)
	require.NotNil(t, u.VerificationExpiresAt)
	require.WithinDuration(t, time.Now().Add(VerificationTTL), *u.VerificationExpiresAt, time.Minute)
	require.NotEqual(t, "Secret1", u.PasswordHash)

	mail := sender.last(t)
	require.Equal(t, "ann@x.com", mail.To)
	require.Contains(t, mail.HTML, "/api/verify/"+*u.VerificationToken)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	require.ErrorIs(t, svc.Register(ctx, "", "a@x.com", "pw"), ErrMissingFields)
	require.ErrorIs(t, svc.Register(ctx, "A", "", "pw"), ErrMissingFields)
	require.ErrorIs(t, svc.Register(ctx, "A", "a@x.com", ""), ErrMissingFields)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))
	require.ErrorIs(t, svc.Register(ctx, "Ann Again", "ann@x.com", "Other2"), ErrDuplicateEmail)
}

func TestRegisterMailFailureDoesNotRollBack(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	sender.fail = true
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))
	_, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
}

func TestRegisterMailFailureWithEmailRequired(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	sender.fail = true
	svc.EmailRequired = true
	ctx := context.Background()

	require.ErrorIs(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"), ErrEmailDelivery)

	// The record is still committed; only the response fails.
	_, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
}

func TestVerifyEmailIsOneShot(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))
	u, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	token := *u.VerificationToken

	verified, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)
	require.Nil(t, verified.VerificationToken)

	// Re-presenting the consumed token must fail.
	_, err = svc.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()

	_, err := svc.VerifyEmail(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.VerifyEmail(context.Background(), "")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))
	u, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	token := *u.VerificationToken

	// Age the token past its window.
	store.mu.Lock()
	past := time.Now().Add(-time.Minute)
	store.byID[u.ID].VerificationExpiresAt = &past
	store.mu.Unlock()

	_, err = svc.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLoginLifecycle(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Ann", "ann@x.com", "Secret1"))

	// Unknown user.
	_, err := svc.Login(ctx, "nobody@x.com", "Secret1")
	require.ErrorIs(t, err, ErrNotFound)

	// Unverified user cannot log in.
	_, err = svc.Login(ctx, "ann@x.com", "Secret1")
	require.ErrorIs(t, err, ErrNotVerified)

	u, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, *u.VerificationToken)
	require.NoError(t, err)

	// Wrong password after verification.
	_, err = svc.Login(ctx, "ann@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, "ann@x.com", "Secret1")
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", res.User.Email)
	require.Equal(t, "Ann", res.User.Name)
	require.True(t, res.User.IsVerified)
	require.NotEmpty(t, res.Token)

	claims, err := auth.NewTokenIssuer([]byte("test-secret")).Parse(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.Equal(t, auth.TokenTypeSession, claims.TokenType)
}

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	ctx := context.Background()

	require.ErrorIs(t, svc.ForgotPassword(ctx, "nobody@x.com"), ErrNotFound)

	registerVerified(t, svc, store, "ann@x.com", "Secret1")

	require.NoError(t, svc.ForgotPassword(ctx, "ann@x.com"))
	mail := sender.last(t)
	require.Equal(t, "ann@x.com", mail.To)

	token := extractToken(t, mail.HTML, "/reset-password/")
	require.NoError(t, svc.VerifyResetToken(ctx, token))
}

func TestResetPasswordRotatesCredentials(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	ctx := context.Background()

	registerVerified(t, svc, store, "ann@x.com", "Secret1")
	require.NoError(t, svc.ForgotPassword(ctx, "ann@x.com"))
	token := extractToken(t, sender.last(t).HTML, "/reset-password/")

	require.NoError(t, svc.ResetPassword(ctx, token, "NewSecret2"))

	_, err := svc.Login(ctx, "ann@x.com", "Secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ann@x.com", "NewSecret2")
	require.NoError(t, err)
}

func TestResetTokenIsSingleUse(t *testing.T) {
	t.Parallel()

	svc, store, sender := newTestService()
	ctx := context.Background()

	registerVerified(t, svc, store, "ann@x.com", "Secret1")
	require.NoError(t, svc.ForgotPassword(ctx, "ann@x.com"))
	token := extractToken(t, sender.last(t).HTML, "/reset-password/")

	require.NoError(t, svc.ResetPassword(ctx, token, "NewSecret2"))

	// The version bump on update invalidates the token.
	require.ErrorIs(t, svc.ResetPassword(ctx, token, "Another3"), ErrTokenInvalid)
	require.ErrorIs(t, svc.VerifyResetToken(ctx, token), ErrTokenInvalid)
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService()
	ctx := context.Background()

	registerVerified(t, svc, store, "ann@x.com", "Secret1")

	// A session token is not a reset token.
	res, err := svc.Login(ctx, "ann@x.com", "Secret1")
	require.NoError(t, err)
	require.ErrorIs(t, svc.ResetPassword(ctx, res.Token, "NewSecret2"), ErrTokenInvalid)

	require.ErrorIs(t, svc.ResetPassword(ctx, "garbage", "NewSecret2"), ErrTokenInvalid)
	require.ErrorIs(t, svc.ResetPassword(ctx, res.Token, ""), ErrMissingFields)
}

func registerVerified(t *testing.T, svc *Service, store *fakeStore, email, password string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "Test User", email, password))
	u, err := store.FindByEmail(ctx, email)
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, *u.VerificationToken)
	require.NoError(t, err)
}
