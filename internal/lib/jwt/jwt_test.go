package jwt

import (
	"testing"
	"time"

	"tabtab_auth/internal/config"
	"tabtab_auth/internal/models"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() config.Tokens {
	return config.Tokens{
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    14 * 24 * time.Hour,
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
	}
}

func parseWith(t *testing.T, token, secret string) (jwtlib.MapClaims, error) {
	t.Helper()

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	return claims, err
}

func TestNewIssuer_MissingSecret(t *testing.T) {
	cfg := testTokens()
	cfg.RefreshTokenSecret = ""

	_, err := NewIssuer(cfg)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssue_Claims(t *testing.T) {
	issuer, err := NewIssuer(testTokens())
	require.NoError(t, err)

	user := models.User{ID: 42, Email: "a@x.com"}

	access, err := issuer.Issue(user, KindAccess)
	require.NoError(t, err)

	claims, err := parseWith(t, access, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "a@x.com", claims["email"])
	assert.Equal(t, "access", claims["type"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), int64(exp), 5)
}

func TestIssue_RefreshLifetime(t *testing.T) {
	issuer, err := NewIssuer(testTokens())
	require.NoError(t, err)

	refresh, err := issuer.Issue(models.User{ID: 1, Email: "a@x.com"}, KindRefresh)
	require.NoError(t, err)

	claims, err := parseWith(t, refresh, "refresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims["type"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Add(14*24*time.Hour).Unix(), int64(exp), 5)
}

func TestIssue_SecretsAreIndependent(t *testing.T) {
	issuer, err := NewIssuer(testTokens())
	require.NoError(t, err)

	user := models.User{ID: 7, Email: "b@x.com"}

	access, err := issuer.Issue(user, KindAccess)
	require.NoError(t, err)
	refresh, err := issuer.Issue(user, KindRefresh)
	require.NoError(t, err)

	_, err = parseWith(t, access, "refresh-secret")
	assert.Error(t, err)

	_, err = parseWith(t, refresh, "access-secret")
	assert.Error(t, err)
}

func TestIssue_RejectsIncompleteUser(t *testing.T) {
	issuer, err := NewIssuer(testTokens())
	require.NoError(t, err)

	_, err = issuer.Issue(models.User{Email: "a@x.com"}, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidUser)

	_, err = issuer.Issue(models.User{ID: 1}, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestIssue_UnknownKind(t *testing.T) {
	issuer, err := NewIssuer(testTokens())
	require.NoError(t, err)

	_, err = issuer.Issue(models.User{ID: 1, Email: "a@x.com"}, TokenKind("session"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}
