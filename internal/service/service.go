// service содержит бизнес-логику dramaturgy-service: жизненный цикл вопросов,
// ответы и комментарии, toggle-голосование, закладки, уведомления, профили
// и аутентификацию. Каждый метод получает models.Actor явным параметром —
// сервис не держит скрытого состояния сессии.
package service

import (
	"errors"

	"github.com/the-dramaturgy/dramaturgy-service/internal/cache"
	"github.com/the-dramaturgy/dramaturgy-service/internal/config"
	"github.com/the-dramaturgy/dramaturgy-service/internal/mailer"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — предусловие state-machine нарушено
	// (уже solved/claimed, вопрос закрыт для ответов и т.п.).
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated — нет сессии либо битые креды/токен.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — аутентифицирован, но не хватает владения/роли.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrEmailTaken — email уже занят.
	ErrEmailTaken = errors.New("email taken")
	// ErrUsernameTaken — username уже занят (без учёта регистра).
	ErrUsernameTaken = errors.New("username taken")
	// ErrInvalidEmail — синтаксически некорректный email.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidUsername — username нарушает правила (длина/паттерн/резерв).
	ErrInvalidUsername = errors.New("invalid username")
	// ErrWeakPassword — пароль не проходит политику сложности.
	ErrWeakPassword = errors.New("weak password")
	// ErrInvalidCredentials — пара email+пароль не подошла.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — битый/чужой access- или refresh-токен.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked — refresh-токен отозван.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrInternal — внутренняя ошибка (сторадж/БД/контекст).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика dramaturgy-service.
type Service struct {
	storage storage.Storage
	cache   cache.RefreshCache
	mailer  mailer.Mailer
	cfg     config.AuthConfig
	smtp    config.SMTPConfig
}

// New создаёт новый экземпляр Service.
// cache может быть nil — тогда refresh-токены обслуживаются только из БД.
func New(st storage.Storage, c cache.RefreshCache, m mailer.Mailer, cfg config.AuthConfig, smtp config.SMTPConfig) *Service {
	if m == nil {
		m = mailer.LogMailer{}
	}

	return &Service{
		storage: st,
		cache:   c,
		mailer:  m,
		cfg:     cfg,
		smtp:    smtp,
	}
}
