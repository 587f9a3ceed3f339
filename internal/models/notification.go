package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind — причина появления уведомления.
type NotificationKind int8

const (
	NotificationReply NotificationKind = iota
	NotificationSolve
	NotificationClaim
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationSolve:
		return "solve"
	case NotificationClaim:
		return "claim"
	default:
		return "reply"
	}
}

// Notification — запись fan-out о событии вокруг вопроса получателя.
// Создаётся, когда на вопрос отвечает не его автор, когда ответ принят
// решением и когда вопрос взят экспертом в работу.
type Notification struct {
	ID         uuid.UUID
	UserID     uuid.UUID // получатель
	ActorID    uuid.UUID // инициатор события
	Kind       NotificationKind
	QuestionID uuid.UUID
	ReplyID    *uuid.UUID
	Read       bool
	CreatedAt  time.Time
}
