package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/the-dramaturgy/dramaturgy-service/internal/mailer"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// RegisterInput — регистрация нового пользователя.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register регистрирует пользователя и выпускает пару токенов.
// Письмо с magic-link подтверждения email уходит fire-and-forget;
// до подтверждения вопросы пользователя создаются в статусе DRAFT.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.Register"

	normEmail, err := validateEmail(in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	username, err := ValidateUsername(in.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	taken, err := s.storage.UsernameTaken(ctx, username, uuid.Nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}
	if taken {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Visibility:   models.VisibilityPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.sendVerificationMail(ctx, user)

	pair, err := s.issueTokenPair(ctx, user, "")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// Login выполняет вход по email+пароль.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.Login"

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(ctx, user, "")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// Refresh обновляет пару токенов по refresh-токену (с ротацией).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	token, err := s.validateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	pair, err := s.issueTokenPair(ctx, user, token.Hash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Revoke отзывает refresh-токен.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	const op = "service.auth.Revoke"

	hash := hashToken(refreshToken)

	revoked, err := s.storage.RevokeRefreshToken(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !revoked {
		return fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	if s.cache != nil {
		if err := s.cache.MarkRevoked(ctx, hash); err != nil {
			log.From(ctx).Warn("refresh_cache_revoke_failed", "err", err.Error())
		}
	}

	return nil
}

// VerifyEmail потребляет magic-link токен и помечает email подтверждённым.
// Подтверждение не перепроводит существующие DRAFT-вопросы в PUBLISHED:
// проверка статуса при создании вопроса одноразовая.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	const op = "service.auth.VerifyEmail"

	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	userID, err := s.storage.ConsumeEmailToken(ctx, hashToken(rawToken), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		case errors.Is(err, storage.ErrExpired):
			return fmt.Errorf("%s: %w", op, ErrTokenExpired)
		default:
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if err := s.storage.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// sendVerificationMail создаёт email-токен и отправляет magic-link
// fire-and-forget; неудача логируется и не влияет на регистрацию.
func (s *Service) sendVerificationMail(ctx context.Context, user *models.User) {
	raw, err := newOpaqueToken()
	if err != nil {
		log.From(ctx).Warn("email_token_generate_failed", "err", err.Error())
		return
	}

	now := time.Now().UTC()
	if err := s.storage.SaveEmailToken(ctx, &models.EmailToken{
		Hash:      hashToken(raw),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.EmailTokenTTL),
		CreatedAt: now,
	}); err != nil {
		log.From(ctx).Warn("email_token_save_failed", "err", err.Error())
		return
	}

	mailer.SendAsync(ctx, s.mailer, mailer.Message{
		To:      user.Email,
		Subject: "Подтвердите email на The Dramaturgy",
		Body: fmt.Sprintf(
			"Здравствуйте, %s!\n\nЧтобы подтвердить email, перейдите по ссылке:\n%s/verify?token=%s\n\nСсылка действует %s.",
			user.Username, s.smtp.BaseURL, raw, s.cfg.EmailTokenTTL,
		),
	})
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// validateEmail проверяет базовый формат email и нормализует регистр.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю:
// длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSpecial {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
