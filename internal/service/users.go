package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// usernamePattern — строчные alnum на границах, внутри допускаются . _ -.
var usernamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9._-]*[a-z0-9])?$`)

// reservedUsernames — имена, закрытые для регистрации.
var reservedUsernames = map[string]struct{}{
	"admin": {}, "administrator": {}, "moderator": {}, "root": {},
	"support": {}, "help": {}, "staff": {}, "system": {}, "expert": {},
	"api": {}, "www": {}, "mail": {}, "dramaturgy": {},
	"me": {}, "login": {}, "logout": {}, "register": {},
	"settings": {}, "profile": {}, "about": {},
}

// isPunct — символ из допустимого «пунктуационного» набора username.
func isPunct(r byte) bool {
	return r == '.' || r == '_' || r == '-'
}

// ValidateUsername нормализует username (TrimSpace+ToLower) и проверяет:
// длина 3–30, паттерн с alnum-границами, без двух спецсимволов подряд,
// вне списка зарезервированных имён. Возвращает нормализованное значение.
func ValidateUsername(raw string) (string, error) {
	const op = "service.users.ValidateUsername"

	username := strings.ToLower(strings.TrimSpace(raw))

	if len(username) < 3 || len(username) > 30 {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
	}

	if !usernamePattern.MatchString(username) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
	}

	for i := 1; i < len(username); i++ {
		if isPunct(username[i-1]) && isPunct(username[i]) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
		}
	}

	if _, ok := reservedUsernames[username]; ok {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidUsername)
	}

	return username, nil
}

// CanViewProfile — правила видимости профиля:
// staff и владелец видят всегда; PUBLIC — все, включая анонимов;
// MEMBERS_ONLY — любая аутентифицированная сессия; PRIVATE — только владелец.
func CanViewProfile(actor models.Actor, owner *models.User) bool {
	if actor.Role.IsStaff() || actor.ID == owner.ID {
		return true
	}

	switch owner.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityMembersOnly:
		return !actor.IsAnonymous()
	default:
		return false
	}
}

// ProfileByUsername возвращает профиль с учётом правил видимости.
//
// Поведение/ошибки:
//   - ErrNotFound — пользователь не найден;
//   - ErrUnauthenticated — профиль закрыт, зритель анонимен;
//   - ErrPermissionDenied — профиль закрыт для зрителя.
func (s *Service) ProfileByUsername(ctx context.Context, actor models.Actor, username string) (*models.User, error) {
	const op = "service.users.ProfileByUsername"

	username = strings.TrimSpace(username)
	lg := log.From(ctx).With("op", op, "username", username)

	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByUsername", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !CanViewProfile(actor, user) {
		if actor.IsAnonymous() {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		lg.Warn("profile hidden from viewer")
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	return user, nil
}

// UpdateProfileInput — изменяемые поля профиля; nil — поле не трогаем.
type UpdateProfileInput struct {
	Username   *string
	Visibility *models.Visibility
	Bio        *string
}

// UpdateProfile обновляет собственный профиль актора.
//
// Валидация:
//   - username проходит ValidateUsername и проверку уникальности
//     (без учёта регистра, исключая текущее имя самого актора).
//
// Поведение/ошибки:
//   - ErrUnauthenticated — анонимный актор;
//   - ErrInvalidUsername / ErrUsernameTaken — правила username;
//   - ErrNotFound — пользователь исчез из хранилища.
func (s *Service) UpdateProfile(ctx context.Context, actor models.Actor, in UpdateProfileInput) (*models.User, error) {
	const op = "service.users.UpdateProfile"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "user_id", actor.ID.String())

	user, err := s.storage.UserByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if in.Username != nil {
		username, err := ValidateUsername(*in.Username)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidUsername)
		}

		if !strings.EqualFold(username, user.Username) {
			taken, err := s.storage.UsernameTaken(ctx, username, user.ID)
			if err != nil {
				lg.Error("storage error on UsernameTaken", "err", err)
				return nil, fmt.Errorf("%s: %w", op, ErrInternal)
			}
			if taken {
				return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
			}
		}

		user.Username = username
	}

	if in.Visibility != nil {
		user.Visibility = *in.Visibility
	}

	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateUser", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return user, nil
}
