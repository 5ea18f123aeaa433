package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabtab_auth/internal/config"
	"tabtab_auth/internal/models"
	"tabtab_auth/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a pgx transaction, so the row
// helpers below run either standalone or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, email, nickname string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, nickname, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, email, nickname, string(passHash)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userQuery+`WHERE email = $1;`, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userQuery+`WHERE id = $1;`, id))
}

const userQuery = `
	SELECT id, email, nickname, password_hash, email_verified,
	       bio, profile_image_url, phone_number, phone_verified
	FROM users
	`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Nickname,
		&u.PassHash,
		&u.EmailVerified,
		&u.Bio,
		&u.ProfileImageURL,
		&u.PhoneNumber,
		&u.PhoneVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func (r *PostgresRepo) UpdateUser(ctx context.Context, email string, patch models.UserPatch) error {
	return updateUser(ctx, r.pool, email, patch)
}

func updateUser(ctx context.Context, q querier, email string, patch models.UserPatch) error {
	const op = "storage.postgres.UpdateUser"

	if patch.IsEmpty() {
		return nil
	}

	var (
		sets []string
		args []any
	)

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Nickname != nil {
		set("nickname", *patch.Nickname)
	}
	if patch.Bio != nil {
		set("bio", *patch.Bio)
	}
	if patch.ProfileImageURL != nil {
		set("profile_image_url", *patch.ProfileImageURL)
	}
	if patch.PhoneNumber != nil {
		set("phone_number", *patch.PhoneNumber)
	}
	if patch.EmailVerified != nil {
		set("email_verified", *patch.EmailVerified)
	}
	if patch.PhoneVerified != nil {
		set("phone_verified", *patch.PhoneVerified)
	}

	args = append(args, email)
	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE email = $%d`,
		strings.Join(sets, ", "), len(args),
	)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *PostgresRepo) UpsertVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	const op = "storage.postgres.UpsertVerificationCode"

	query := `
		INSERT INTO verification_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at;
	`

	_, err := r.pool.Exec(ctx, query, email, code, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) VerificationCode(ctx context.Context, email string) (models.VerificationCode, error) {
	query := `
		SELECT email, code, expires_at
		FROM verification_codes
		WHERE email = $1;
	`

	var vc models.VerificationCode

	err := r.pool.QueryRow(ctx, query, email).Scan(&vc.Email, &vc.Code, &vc.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VerificationCode{}, storage.ErrCodeNotFound
		}

		return models.VerificationCode{}, err
	}

	return vc, nil
}

func deleteVerificationCode(ctx context.Context, q querier, email string) error {
	const op = "storage.postgres.DeleteVerificationCode"

	tag, err := q.Exec(ctx, `DELETE FROM verification_codes WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrCodeNotFound
	}

	return nil
}

// WithinTx runs fn inside a single database transaction. A non-nil error
// from fn rolls everything back.
func (r *PostgresRepo) WithinTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	const op = "storage.postgres.WithinTx"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Tx binds the write operations to one pgx transaction.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) DeleteVerificationCode(ctx context.Context, email string) error {
	return deleteVerificationCode(ctx, t.tx, email)
}

func (t *Tx) UpdateUser(ctx context.Context, email string, patch models.UserPatch) error {
	return updateUser(ctx, t.tx, email, patch)
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

// * dsn builds the connection string from config.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
