package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

// SaveRefreshToken сохраняет новый refresh-токен.
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const op = "storage.postgres.SaveRefreshToken"

	query := `
		INSERT INTO refresh_tokens(hash, user_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		token.Hash,
		token.UserID,
		token.ExpiresAt,
		token.Revoked,
		token.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RefreshTokenByHash находит refresh-токен по его хэшу.
func (s *Storage) RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	const op = "storage.postgres.RefreshTokenByHash"

	query := `
		SELECT hash, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE hash = $1
	`

	var token models.RefreshToken
	err := s.db.QueryRow(ctx, query, hash).Scan(
		&token.Hash,
		&token.UserID,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &token, nil
}

// RevokeRefreshToken пытается отозвать refresh-токен.
// false — токен существовал, но уже отозван.
func (s *Storage) RevokeRefreshToken(ctx context.Context, hash string) (bool, error) {
	const op = "storage.postgres.RevokeRefreshToken"

	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE
		WHERE hash = $1 AND revoked = FALSE
	`

	tag, err := s.db.Exec(ctx, query, hash)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Либо токена нет, либо он уже отозван — различаем для вызывающего.
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM refresh_tokens WHERE hash = $1)`, hash,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return false, nil
}

// DeleteExpiredTokens удаляет просроченные refresh- и email-токены.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	const op = "storage.postgres.DeleteExpiredTokens"

	if _, err := s.db.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= $1`, now,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.db.Exec(ctx,
		`DELETE FROM email_tokens WHERE expires_at <= $1`, now,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveEmailToken сохраняет токен подтверждения email.
func (s *Storage) SaveEmailToken(ctx context.Context, token *models.EmailToken) error {
	const op = "storage.postgres.SaveEmailToken"

	query := `
		INSERT INTO email_tokens(hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.Exec(ctx, query,
		token.Hash,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeEmailToken атомарно потребляет токен подтверждения:
// удаление и чтение user_id одним запросом, повторное применение невозможно.
func (s *Storage) ConsumeEmailToken(ctx context.Context, hash string, now time.Time) (uuid.UUID, error) {
	const op = "storage.postgres.ConsumeEmailToken"

	query := `
		DELETE FROM email_tokens
		WHERE hash = $1
		RETURNING user_id, expires_at
	`

	var (
		userID    uuid.UUID
		expiresAt time.Time
	)
	err := s.db.QueryRow(ctx, query, hash).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if expiresAt.Before(now) {
		return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrExpired)
	}

	return userID, nil
}
