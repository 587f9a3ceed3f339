// storage задаёт контракт работы с БД и канонические ошибки хранилища.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/username/vote/bookmark).
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict — предусловие state-machine нарушено (уже solved/claimed,
	// вопрос не published и т.п.): условный UPDATE не затронул строк.
	ErrConflict = errors.New("conflict")
	// ErrForeignReply — reply принадлежит другому вопросу.
	ErrForeignReply = errors.New("reply belongs to another question")
	// ErrSolutionBound — reply связан как решение вопроса и не может быть удалён.
	ErrSolutionBound = errors.New("reply is bound as solution")
	// ErrParentNotFound — родительский комментарий не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrMaxDepthExceeded — превышена допустимая вложенность комментариев.
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrExpired — сущность просрочена (refresh/email-токен).
	ErrExpired = errors.New("expired")
	// ErrRevoked — сущность отозвана (refresh-токен).
	ErrRevoked = errors.New("revoked")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UserByEmail находит пользователя по email (регистронезависимо).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByUsername находит пользователя по username (регистронезависимо).
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UpdateUser обновляет изменяемые поля профиля (username/visibility/bio).
	UpdateUser(ctx context.Context, user *models.User) error
	// MarkEmailVerified помечает email пользователя подтверждённым.
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
	// UsernameTaken проверяет занятость username без учёта регистра,
	// исключая самого пользователя excludeID.
	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
}

// TokenStorage выполняет операции над refresh- и email-токенами.
type TokenStorage interface {
	// SaveRefreshToken сохраняет новый refresh-токен.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит refresh-токен по его хэшу.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken пытается отозвать refresh-токен;
	// false — токен уже был отозван.
	RevokeRefreshToken(ctx context.Context, hash string) (bool, error)
	// DeleteExpiredTokens удаляет просроченные refresh- и email-токены.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
	// SaveEmailToken сохраняет токен подтверждения email.
	SaveEmailToken(ctx context.Context, token *models.EmailToken) error
	// ConsumeEmailToken атомарно потребляет токен подтверждения и
	// возвращает пользователя, которому он принадлежал.
	ConsumeEmailToken(ctx context.Context, hash string, now time.Time) (uuid.UUID, error)
}

// QuestionFilter — параметры выборки вопросов.
type QuestionFilter struct {
	AuthorID *uuid.UUID
	Status   *models.QuestionStatus
	Limit    int32
	Offset   int32
}

// QuestionStorage выполняет операции над вопросами.
type QuestionStorage interface {
	// SaveQuestion создаёт новый вопрос.
	SaveQuestion(ctx context.Context, q *models.Question) error
	// QuestionByID находит вопрос по ID.
	QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	// ListQuestions возвращает вопросы по фильтру, новые сверху.
	ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error)
	// UpdateQuestionContent обновляет title/content/is_private/request_expert.
	UpdateQuestionContent(ctx context.Context, q *models.Question) error
	// DeleteQuestion удаляет вопрос вместе с порождёнными строками.
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	// SetQuestionStatus переводит вопрос в новый статус (модерация).
	SetQuestionStatus(ctx context.Context, id uuid.UUID, status models.QuestionStatus) error
	// SolveQuestion помечает reply принятым решением вопроса.
	// В одной транзакции: reply принадлежит вопросу (иначе ErrForeignReply),
	// вопрос ещё не solved (иначе ErrConflict).
	SolveQuestion(ctx context.Context, questionID, replyID uuid.UUID) error
	// UnsolveQuestion снимает отметку решения (ErrConflict, если не solved).
	UnsolveQuestion(ctx context.Context, questionID uuid.UUID) error
	// ClaimQuestion назначает вопрос эксперту условным UPDATE
	// (WHERE expert_claimed_by IS NULL ...): первый успевший выигрывает,
	// проигравший получает ErrConflict.
	ClaimQuestion(ctx context.Context, questionID, userID uuid.UUID, at time.Time) error
	// UnclaimQuestion снимает назначение; снять может только текущий клеймер.
	UnclaimQuestion(ctx context.Context, questionID, userID uuid.UUID) error
}

// ReplyStorage выполняет операции над ответами.
type ReplyStorage interface {
	// SaveReply создаёт ответ и инкрементирует reply_count вопроса
	// в одной транзакции.
	SaveReply(ctx context.Context, r *models.Reply) error
	// ReplyByID находит ответ по ID.
	ReplyByID(ctx context.Context, id uuid.UUID) (*models.Reply, error)
	// ListReplies возвращает ответы вопроса, старые сверху.
	ListReplies(ctx context.Context, questionID uuid.UUID, limit, offset int32) ([]models.Reply, error)
	// UpdateReply обновляет content/is_expert_perspective.
	UpdateReply(ctx context.Context, r *models.Reply) error
	// DeleteReply удаляет ответ и декрементирует reply_count вопроса.
	// ErrSolutionBound, если ответ связан как решение.
	DeleteReply(ctx context.Context, id uuid.UUID) error
}

// CommentStorage выполняет операции над комментариями.
type CommentStorage interface {
	// SaveComment создаёт комментарий и инкрементирует comment_count ответа
	// в одной транзакции. Родитель должен существовать, принадлежать тому же
	// ответу и сам быть корневым (иначе ErrMaxDepthExceeded).
	SaveComment(ctx context.Context, c *models.Comment) error
	// CommentByID находит комментарий по ID.
	CommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListComments возвращает комментарии ответа, старые сверху.
	ListComments(ctx context.Context, replyID uuid.UUID, limit, offset int32) ([]models.Comment, error)
	// UpdateComment обновляет content.
	UpdateComment(ctx context.Context, c *models.Comment) error
	// DeleteComment удаляет комментарий и декрементирует comment_count ответа.
	DeleteComment(ctx context.Context, id uuid.UUID) error
}

// VoteStorage применяет toggle-голосование.
type VoteStorage interface {
	// ToggleVote в одной транзакции: ищет существующий голос (user, target),
	// создаёт/переключает/снимает его, правит денормализованные счётчики
	// целевой строки и пересчитывает авторитетные тоталы из строк votes.
	ToggleVote(ctx context.Context, vote models.Vote) (*models.VoteResult, error)
}

// BookmarkStorage выполняет операции над закладками.
type BookmarkStorage interface {
	// SaveBookmark создаёт закладку (ErrAlreadyExists при повторе).
	SaveBookmark(ctx context.Context, b *models.Bookmark) error
	// DeleteBookmark удаляет закладку (ErrNotFound, если её нет).
	DeleteBookmark(ctx context.Context, userID, questionID uuid.UUID) error
	// ListBookmarks возвращает закладки пользователя, новые сверху.
	ListBookmarks(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]models.Bookmark, error)
}

// NotificationStorage выполняет операции над уведомлениями.
type NotificationStorage interface {
	// SaveNotification создаёт запись уведомления.
	SaveNotification(ctx context.Context, n *models.Notification) error
	// ListNotifications возвращает уведомления получателя, непрочитанные сверху.
	ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]models.Notification, error)
	// MarkNotificationRead помечает уведомление прочитанным (только своё).
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	// MarkAllNotificationsRead помечает все уведомления получателя прочитанными.
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error
	// MarkQuestionNotificationsRead помечает прочитанными уведомления
	// получателя, связанные с вопросом (просмотр вопроса).
	MarkQuestionNotificationsRead(ctx context.Context, userID, questionID uuid.UUID) error
}

// Storage задаёт совокупный контракт работы с БД.
type Storage interface {
	UserStorage
	TokenStorage
	QuestionStorage
	ReplyStorage
	CommentStorage
	VoteStorage
	BookmarkStorage
	NotificationStorage
	Close()
}
