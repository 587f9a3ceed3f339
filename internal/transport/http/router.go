package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/the-dramaturgy/dramaturgy-service/internal/service"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/handlers"
	"github.com/the-dramaturgy/dramaturgy-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api/v1"; если пустой — роуты регистрируются на корне.
	Registry prometheus.Registerer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Registry != nil {
		root.Use(middleware.Metrics(opts.Registry))
	}
	root.Use(middleware.AuthBearer(svc)) // вынимаем актора из Bearer-токена в контекст
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// auth
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/revoke", h.Revoke)
	r.Get("/auth/verify-email", h.VerifyEmail)

	// users
	r.Get("/users/me", h.Me)
	r.Patch("/users/me", h.UpdateProfile)
	r.Get("/users/{username}", h.GetProfile)

	// questions
	r.Post("/questions", h.CreateQuestion)
	r.Get("/questions", h.ListQuestions)
	r.Get("/questions/{id}", h.GetQuestion)
	r.Patch("/questions/{id}", h.UpdateQuestion)
	r.Delete("/questions/{id}", h.DeleteQuestion)
	r.Post("/questions/{id}/hide", h.HideQuestion)
	r.Post("/questions/{id}/solve", h.SolveQuestion)
	r.Post("/questions/{id}/unsolve", h.UnsolveQuestion)
	r.Post("/questions/{id}/claim", h.ClaimQuestion)
	r.Post("/questions/{id}/unclaim", h.UnclaimQuestion)

	// replies
	r.Post("/questions/{id}/replies", h.CreateReply)
	r.Get("/questions/{id}/replies", h.ListReplies)
	r.Patch("/replies/{id}", h.UpdateReply)
	r.Delete("/replies/{id}", h.DeleteReply)

	// comments
	r.Post("/replies/{id}/comments", h.CreateComment)
	r.Get("/replies/{id}/comments", h.ListComments)
	r.Patch("/comments/{id}", h.UpdateComment)
	r.Delete("/comments/{id}", h.DeleteComment)

	// votes
	r.Post("/votes", h.ToggleVote)

	// bookmarks
	r.Put("/questions/{id}/bookmark", h.AddBookmark)
	r.Delete("/questions/{id}/bookmark", h.RemoveBookmark)
	r.Get("/bookmarks", h.ListBookmarks)

	// notifications
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications/{id}/read", h.MarkNotificationRead)
	r.Post("/notifications/read-all", h.MarkAllNotificationsRead)
}
