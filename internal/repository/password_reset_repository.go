package repository

import (
	"context"
	"errors"

	"kobo-inventory/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type passwordResetRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPasswordResetRepository creates a new PostgreSQL-backed reset token store.
func NewPasswordResetRepository(pool *pgxpool.Pool, logger zerolog.Logger) PasswordResetRepository {
	return &passwordResetRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "password_reset").Logger(),
	}
}

func (r *passwordResetRepository) Replace(ctx context.Context, reset *model.PasswordReset) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return model.NewPersistenceFault("password_resets.begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM password_resets WHERE email = $1`, reset.Email); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete previous reset tokens")
		return model.NewPersistenceFault("password_resets.delete", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO password_resets (email, token, created_at) VALUES ($1, $2, NOW()) RETURNING created_at`,
		reset.Email, reset.Token,
	).Scan(&reset.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to store reset token")
		return model.NewPersistenceFault("password_resets.insert", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return model.NewPersistenceFault("password_resets.commit", err)
	}
	return nil
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.pool.QueryRow(ctx,
		`SELECT email, token, created_at FROM password_resets WHERE token = $1`, token,
	).Scan(&reset.Email, &reset.Token, &reset.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query reset token")
		return nil, model.NewPersistenceFault("password_resets.get_by_token", err)
	}
	return &reset, nil
}

func (r *passwordResetRepository) CompleteReset(ctx context.Context, email, passwordHash string) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return model.NewPersistenceFault("password_resets.begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	tag, err := tx.Exec(ctx, `UPDATE users SET password = $1, updated_at = NOW() WHERE email = $2`, passwordHash, email)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to update password")
		return model.NewPersistenceFault("users.update_password", err)
	}
	if tag.RowsAffected() == 0 {
		err = model.ErrUserNotFound
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM password_resets WHERE email = $1`, email); err != nil {
		r.logger.Error().Err(err).Msg("failed to delete reset tokens")
		return model.NewPersistenceFault("password_resets.delete", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return model.NewPersistenceFault("password_resets.commit", err)
	}
	return nil
}
