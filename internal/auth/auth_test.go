package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tabtab_auth/internal/config"
	"tabtab_auth/internal/lib/jwt"
	"tabtab_auth/internal/models"
	"tabtab_auth/internal/storage"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeUserRepo struct {
	users  map[string]models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User), nextID: 1}
}

func (f *fakeUserRepo) User(_ context.Context, email string) (models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SaveUser(_ context.Context, email, nickname string, passHash []byte) (int64, error) {
	if _, ok := f.users[email]; ok {
		return 0, storage.ErrUserExists
	}

	id := f.nextID
	f.nextID++

	f.users[email] = models.User{
		ID:       id,
		Email:    email,
		Nickname: nickname,
		PassHash: passHash,
	}

	return id, nil
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuth(t *testing.T, repo *fakeUserRepo) *Auth {
	t.Helper()

	issuer, err := jwt.NewIssuer(config.Tokens{
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    14 * 24 * time.Hour,
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
	})
	require.NoError(t, err)

	return New(discardLogger(), repo, repo, issuer, bcrypt.MinCost)
}

func tokenClaims(t *testing.T, token, secret string) jwtlib.MapClaims {
	t.Helper()

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)

	return claims
}

// --- tests ---

func TestSignIn_UnknownEmail(t *testing.T) {
	a := newAuth(t, newFakeUserRepo())

	_, _, err := a.SignIn(context.Background(), "nobody@x.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	_, _, err := a.SignIn(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_ErrorsDoNotRevealAccounts(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	_, _, errWrongPass := a.SignIn(context.Background(), "a@x.com", "wrong")
	_, _, errNoUser := a.SignIn(context.Background(), "nobody@x.com", "wrong")

	require.Error(t, errWrongPass)
	require.Error(t, errNoUser)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestSignIn_Success(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	access, refresh, err := a.SignIn(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	accessClaims := tokenClaims(t, access, "access-secret")
	assert.Equal(t, "access", accessClaims["type"])
	assert.Equal(t, "a@x.com", accessClaims["email"])
	assert.Equal(t, "1", accessClaims["sub"])

	refreshClaims := tokenClaims(t, refresh, "refresh-secret")
	assert.Equal(t, "refresh", refreshClaims["type"])
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	err := a.SignUp(context.Background(), "a@x.com", "other", "Bo")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSignUp_PasswordIsHashed(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	stored := repo.users["a@x.com"]
	assert.NotEqual(t, "pw123", string(stored.PassHash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PassHash, []byte("pw123")))
}

func TestSignUp_IssuesNoTokens(t *testing.T) {
	repo := newFakeUserRepo()
	a := newAuth(t, repo)

	require.NoError(t, a.SignUp(context.Background(), "a@x.com", "pw123", "Al"))

	stored := repo.users["a@x.com"]
	assert.False(t, stored.EmailVerified)
}
