package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or
	// structural validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("token has expired")
)

// Token types carried in the typ claim so a reset token can never be
// replayed as a session and vice versa.
const (
	TokenTypeSession = "session"
	TokenTypeReset   = "reset"
)

const (
	SessionTTL = 7 * 24 * time.Hour
	ResetTTL   = time.Hour
)

// Claims is the payload embedded in every signed token.
type Claims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role,omitempty"`
	TokenType    string `json:"typ"`
	TokenVersion int    `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies self-contained tokens with a
// process-wide HMAC secret. Validity is signature + expiry only; no
// store lookup.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// IssueSession returns a 7-day session token for the given user.
func (i *TokenIssuer) IssueSession(userID, role string) (string, error) {
	return i.sign(Claims{
		UserID:    userID,
		Role:      role,
		TokenType: TokenTypeSession,
	}, SessionTTL)
}

// IssueReset returns a 1-hour password-reset token bound to the user's
// current token version. Bumping the version invalidates it.
func (i *TokenIssuer) IssueReset(userID string, tokenVersion int) (string, error) {
	return i.sign(Claims{
		UserID:       userID,
		TokenType:    TokenTypeReset,
		TokenVersion: tokenVersion,
	}, ResetTTL)
}

func (i *TokenIssuer) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates signature and expiry and returns the claims.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
