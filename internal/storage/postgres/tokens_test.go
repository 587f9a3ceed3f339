package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

// Интеграционные тесты refresh- и email-токенов: сохранение/поиск по хэшу,
// идемпотентность отзыва, атомарное потребление magic-link и чистка
// просроченных записей. Контейнер и миграции — см. startPostgres в users_test.go.

// TestIntegration_RefreshToken_SaveFindRevoke — happy-path и идемпотентность отзыва.
func TestIntegration_RefreshToken_SaveFindRevoke(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := mustSaveUser(t, st, "user@example.com", "georges")

	now := time.Now().UTC()
	tok := &models.RefreshToken{
		Hash:      "refresh-hash-1",
		UserID:    u.ID,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, st.SaveRefreshToken(context.Background(), tok))

	got, err := st.RefreshTokenByHash(context.Background(), tok.Hash)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
	require.False(t, got.Revoked)

	ok, err := st.RevokeRefreshToken(context.Background(), tok.Hash)
	require.NoError(t, err)
	require.True(t, ok)

	// Повторный отзыв — false без ошибки.
	ok, err = st.RevokeRefreshToken(context.Background(), tok.Hash)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = st.RefreshTokenByHash(context.Background(), tok.Hash)
	require.NoError(t, err)
	require.True(t, got.Revoked)
}

// TestIntegration_RefreshTokenByHash_NotFound — поиск отсутствующего хэша.
func TestIntegration_RefreshTokenByHash_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.RefreshTokenByHash(context.Background(), "absent-hash")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_ConsumeEmailToken — одноразовость magic-link: повторное
// потребление и просроченный токен отклоняются.
func TestIntegration_ConsumeEmailToken(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := mustSaveUser(t, st, "user@example.com", "georges")

	now := time.Now().UTC()
	tok := &models.EmailToken{
		Hash:      "email-hash-1",
		UserID:    u.ID,
		ExpiresAt: now.Add(48 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, st.SaveEmailToken(context.Background(), tok))

	uid, err := st.ConsumeEmailToken(context.Background(), tok.Hash, now)
	require.NoError(t, err)
	require.Equal(t, u.ID, uid)

	// Повторное потребление — уже нет записи.
	_, err = st.ConsumeEmailToken(context.Background(), tok.Hash, now)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Просроченный токен.
	expired := &models.EmailToken{
		Hash:      "email-hash-2",
		UserID:    u.ID,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, st.SaveEmailToken(context.Background(), expired))

	_, err = st.ConsumeEmailToken(context.Background(), expired.Hash, now)
	require.ErrorIs(t, err, storage.ErrExpired)
}

// TestIntegration_DeleteExpiredTokens — чистка удаляет просроченные refresh- и
// email-токены, живые записи не трогает.
func TestIntegration_DeleteExpiredTokens(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := mustSaveUser(t, st, "user@example.com", "georges")
	now := time.Now().UTC()

	alive := &models.RefreshToken{
		Hash:      "alive-hash",
		UserID:    u.ID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	dead := &models.RefreshToken{
		Hash:      "dead-hash",
		UserID:    u.ID,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	require.NoError(t, st.SaveRefreshToken(context.Background(), alive))
	require.NoError(t, st.SaveRefreshToken(context.Background(), dead))

	require.NoError(t, st.DeleteExpiredTokens(context.Background(), now))

	_, err := st.RefreshTokenByHash(context.Background(), "dead-hash")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.RefreshTokenByHash(context.Background(), "alive-hash")
	require.NoError(t, err)
}
