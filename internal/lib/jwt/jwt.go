package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"tabtab_auth/internal/config"
	"tabtab_auth/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	ErrEmptySecret = errors.New("token secret is not configured")
	ErrInvalidUser = errors.New("user has no id or email")
	ErrUnknownKind = errors.New("unknown token kind")
)

// Issuer mints access and refresh tokens. The two kinds are signed with
// independent secrets and carry independent lifetimes.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(cfg config.Tokens) (*Issuer, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, ErrEmptySecret
	}

	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// Issue signs a token of the given kind for the user.
func (i *Issuer) Issue(user models.User, kind TokenKind) (string, error) {
	const op = "jwt.Issue"

	if user.ID == 0 || user.Email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUser)
	}

	var (
		secret []byte
		ttl    time.Duration
	)

	switch kind {
	case KindAccess:
		secret = i.accessSecret
		ttl = i.accessTTL
	case KindRefresh:
		secret = i.refreshSecret
		ttl = i.refreshTTL
	default:
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownKind, kind)
	}

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"type":  string(kind),
		"exp":   time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}
