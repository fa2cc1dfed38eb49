package repository

import (
	"context"
	"errors"
	"time"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, name, email, password, is_admin, is_verified, two_factor_enabled, secret_key, last_login, created_at, updated_at`

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint breach.
const uniqueViolation = "23505"

type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// Create inserts a user and returns its generated ID.
func (r *userRepository) Create(ctx context.Context, u *model.User) (int64, error) {
	query := `
		INSERT INTO users (name, email, password, is_admin, is_verified, two_factor_enabled, secret_key)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.IsAdmin, u.IsVerified, u.TOTPSecret,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, model.ErrUserExists
		}
		r.logger.Error().Err(err).Msg("failed to create user")
		return 0, model.NewPersistenceFault("users.create", err)
	}

	return u.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, op, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsVerified,
		&u.TwoFactorEnabled,
		&u.TOTPSecret,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("op", op).Msg("failed to query user")
		return nil, model.NewPersistenceFault(op, err)
	}
	return &u, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $1, updated_at = NOW() WHERE id = $2`, at, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update last login")
		return model.NewPersistenceFault("users.update_last_login", err)
	}
	return nil
}

func (r *userRepository) EnableTwoFactor(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET two_factor_enabled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to enable two-factor")
		return model.NewPersistenceFault("users.enable_two_factor", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
