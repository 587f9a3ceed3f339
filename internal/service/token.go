package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/cache"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// accessClaims — полезная нагрузка access-токена: идентичность и роль актора.
// email_verified фиксируется на момент выпуска токена.
type accessClaims struct {
	UserID        string `json:"uid"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// generateAccessToken выпускает подписанный access-токен.
func (s *Service) generateAccessToken(ctx context.Context, user *models.User, now time.Time) (string, time.Time, error) {
	const op = "service.token.generateAccessToken"

	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claims := accessClaims{
		UserID:        user.ID.String(),
		Username:      user.Username,
		Role:          user.Role.String(),
		EmailVerified: user.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		log.From(ctx).Error("access_token_sign_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	return signed, expiresAt, nil
}

// ValidateAccessToken проверяет access-токен и восстанавливает Actor.
func (s *Service) ValidateAccessToken(tokenStr string) (models.Actor, error) {
	const op = "service.token.ValidateAccessToken"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Actor{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.Actor{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return models.Actor{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil || uid == uuid.Nil {
		return models.Actor{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.Actor{
		ID:            uid,
		Username:      claims.Username,
		Role:          models.ParseRole(claims.Role),
		EmailVerified: claims.EmailVerified,
	}, nil
}

// hashToken — SHA-256 в base64url; в хранилище и кэш попадает только хэш.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// newOpaqueToken — криптографически стойкий непрозрачный токен (32 байта).
func newOpaqueToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// issueTokenPair выпускает access+refresh; rotatedFrom — хэш заменяемого
// refresh-токена при ротации (пустая строка при логине/регистрации).
func (s *Service) issueTokenPair(ctx context.Context, user *models.User, rotatedFrom string) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	now := time.Now().UTC()

	access, accessExp, err := s.generateAccessToken(ctx, user, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshExp := now.Add(s.cfg.RefreshTokenTTL)
	hash := hashToken(refresh)

	if err := s.storage.SaveRefreshToken(ctx, &models.RefreshToken{
		Hash:      hash,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		entry := &cache.RefreshEntry{UserID: user.ID, ExpiresAt: refreshExp}
		if err := s.cache.Set(ctx, hash, entry, s.cfg.RefreshTokenTTL); err != nil {
			// Кэш best-effort: источник истины — PostgreSQL.
			log.From(ctx).Warn("refresh_cache_set_failed", slog.String("err", err.Error()))
		}
	}

	// Ротация: старый refresh отзываем после успешного выпуска нового.
	if rotatedFrom != "" {
		if _, err := s.storage.RevokeRefreshToken(ctx, rotatedFrom); err != nil &&
			!errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if s.cache != nil {
			if err := s.cache.MarkRevoked(ctx, rotatedFrom); err != nil {
				log.From(ctx).Warn("refresh_cache_revoke_failed", slog.String("err", err.Error()))
			}
		}
	}

	return &models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// validateRefreshToken проверяет refresh-токен: сперва кэш, затем БД.
func (s *Service) validateRefreshToken(ctx context.Context, raw string) (*models.RefreshToken, error) {
	const op = "service.token.validateRefreshToken"

	hash := hashToken(raw)
	now := time.Now().UTC()

	if s.cache != nil {
		entry, ok, err := s.cache.Get(ctx, hash)
		if err != nil {
			log.From(ctx).Warn("refresh_cache_get_failed", slog.String("err", err.Error()))
		} else if ok {
			switch {
			case entry.Revoked:
				return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
			case entry.ExpiresAt.Before(now):
				return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
			default:
				return &models.RefreshToken{
					Hash:      hash,
					UserID:    entry.UserID,
					ExpiresAt: entry.ExpiresAt,
				}, nil
			}
		}
	}

	token, err := s.storage.RefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	switch {
	case token.Revoked:
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	case token.ExpiresAt.Before(now):
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	return token, nil
}
