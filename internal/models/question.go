package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStatus — состояние жизненного цикла вопроса.
// Переходы: DRAFT -> PUBLISHED (однократно, при создании, по признаку
// подтверждённого email автора) и PUBLISHED -> HIDDEN (модерация).
type QuestionStatus int8

const (
	StatusDraft QuestionStatus = iota
	StatusPublished
	StatusHidden
)

func (s QuestionStatus) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusHidden:
		return "hidden"
	default:
		return "draft"
	}
}

// Question — внутренняя доменная модель вопроса.
//
// Инварианты:
//   - SolvedByReplyID, если задан, ссылается на Reply этого же вопроса;
//   - ExpertClaimedByID выставляется не более чем одним пользователем
//     одновременно (снимается только текущим клеймером);
//   - счётчики Helpful/Insightful/ReplyCount денормализованы и поддерживаются
//     в одной транзакции с изменением порождающих строк.
type Question struct {
	ID                uuid.UUID
	AuthorID          uuid.UUID
	Title             string
	Content           string
	Status            QuestionStatus
	IsPrivate         bool
	RequestExpert     bool
	IsSolved          bool
	SolvedByReplyID   *uuid.UUID
	ExpertClaimedByID *uuid.UUID
	ExpertClaimedAt   *time.Time
	ReplyCount        int32
	HelpfulCount      int32
	InsightfulCount   int32
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Reply — ответ на вопрос.
// Инвариант: Reply, связанный как SolvedByReplyID своего вопроса,
// не может быть удалён, пока связь существует.
type Reply struct {
	ID                  uuid.UUID
	QuestionID          uuid.UUID
	AuthorID            uuid.UUID
	Content             string
	IsExpertPerspective bool
	HelpfulCount        int32
	InsightfulCount     int32
	CommentCount        int32
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Comment — комментарий к ответу; допускается один уровень вложенности
// (ParentCommentID указывает только на корневой комментарий).
type Comment struct {
	ID              uuid.UUID
	ReplyID         uuid.UUID
	AuthorID        uuid.UUID
	ParentCommentID *uuid.UUID
	Content         string
	HelpfulCount    int32
	InsightfulCount int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Bookmark — закладка пользователя на вопрос; уникальна per (user, question).
type Bookmark struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	QuestionID uuid.UUID
	CreatedAt  time.Time
}
