package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair — пара access/refresh, выдаваемая транспорту.
// Наружу refresh уходит в сыром виде, в хранилище попадает только его хэш.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RefreshToken — серверная запись refresh-токена (хранится только SHA-256 хэш).
type RefreshToken struct {
	Hash      string
	UserID    uuid.UUID
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// EmailToken — одноразовый токен подтверждения email (magic-link).
// Потребляется атомарно: повторное использование невозможно.
type EmailToken struct {
	Hash      string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}
