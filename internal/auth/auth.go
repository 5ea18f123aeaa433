package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tabtab_auth/internal/lib/jwt"
	sl "tabtab_auth/internal/lib/logger"
	"tabtab_auth/internal/models"
	"tabtab_auth/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// Messages are fixed. ErrInvalidCredentials covers both an unknown email and
// a wrong password so that sign-in responses cannot be used to enumerate
// accounts.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("email is already registered")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokens      TokenIssuer
	bcryptCost  int
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, nickname string, passHash []byte) (uid int64, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

type TokenIssuer interface {
	Issue(user models.User, kind jwt.TokenKind) (string, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokens TokenIssuer,
	bcryptCost int,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
	}
}

// SignIn checks the credentials and returns an access and a refresh token.
// Email lookup is exact-string, no case folding.
func (a *Auth) SignIn(
	ctx context.Context,
	email, password string,
) (accessToken string, refreshToken string, err error) {
	const op = "auth.SignIn"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = a.tokens.Issue(user, jwt.KindAccess)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err = a.tokens.Issue(user, jwt.KindRefresh)
	if err != nil {
		log.Error("failed to generate refresh token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user signed in successfully", slog.Int64("uid", user.ID))

	return accessToken, refreshToken, nil
}

// SignUp registers a new account. No tokens are issued here; the client
// signs in as a separate step.
func (a *Auth) SignUp(
	ctx context.Context,
	email, password, nickname string,
) error {
	const op = "auth.SignUp"

	log := a.log.With(slog.String("op", op))

	log.Info("registering new user")

	_, err := a.usrProvider.User(ctx, email)
	if err == nil {
		log.Warn("user already exists")
		return ErrUserExists
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to check existing user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, nickname, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	return nil
}
