// models содержит доменные сущности dramaturgy-service.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — уровень доверия пользователя; по возрастанию привилегий.
type Role int8

const (
	RoleUser Role = iota
	RoleExpert
	RoleModerator
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleExpert:
		return "expert"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "user"
	}
}

// ParseRole — обратное преобразование; неизвестные строки трактуем как user.
func ParseRole(s string) Role {
	switch s {
	case "expert":
		return RoleExpert
	case "moderator":
		return RoleModerator
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsExpertTier — роль даёт экспертные права (claim, экспертные ответы).
func (r Role) IsExpertTier() bool {
	return r == RoleExpert || r == RoleModerator || r == RoleAdmin
}

// IsStaff — роль обходит ограничения видимости и модерирует контент.
func (r Role) IsStaff() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Visibility — настройка видимости профиля.
type Visibility int8

const (
	VisibilityPublic Visibility = iota
	VisibilityMembersOnly
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityMembersOnly:
		return "members_only"
	case VisibilityPrivate:
		return "private"
	default:
		return "public"
	}
}

// ParseVisibility строго парсит строковое представление.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "public":
		return VisibilityPublic, true
	case "members_only":
		return VisibilityMembersOnly, true
	case "private":
		return VisibilityPrivate, true
	default:
		return VisibilityPublic, false
	}
}

// User — внутренняя доменная модель пользователя.
// EmailVerified проверяется один раз при создании вопроса (DRAFT/PUBLISHED)
// и не перепроверяется задним числом.
type User struct {
	ID            uuid.UUID
	Email         string
	Username      string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	Visibility    Visibility
	Bio           string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Actor — аутентифицированный субъект запроса, извлекается транспортом из
// access-токена и явно передаётся в каждый сервисный метод. Нулевое значение —
// анонимный посетитель.
type Actor struct {
	ID            uuid.UUID
	Username      string
	Role          Role
	EmailVerified bool
}

// IsAnonymous — запрос без сессии.
func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}
