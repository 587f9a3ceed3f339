package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteType — вид голоса.
type VoteType int8

const (
	VoteHelpful VoteType = iota
	VoteInsightful
)

func (t VoteType) String() string {
	switch t {
	case VoteInsightful:
		return "insightful"
	default:
		return "helpful"
	}
}

// ParseVoteType строго парсит строковое представление.
func ParseVoteType(s string) (VoteType, bool) {
	switch s {
	case "helpful":
		return VoteHelpful, true
	case "insightful":
		return VoteInsightful, true
	default:
		return VoteHelpful, false
	}
}

// VoteTarget — вид сущности, на которую отдан голос.
type VoteTarget int8

const (
	TargetQuestion VoteTarget = iota
	TargetReply
	TargetComment
)

func (t VoteTarget) String() string {
	switch t {
	case TargetReply:
		return "reply"
	case TargetComment:
		return "comment"
	default:
		return "question"
	}
}

// ParseVoteTarget строго парсит строковое представление.
func ParseVoteTarget(s string) (VoteTarget, bool) {
	switch s {
	case "question":
		return TargetQuestion, true
	case "reply":
		return TargetReply, true
	case "comment":
		return TargetComment, true
	default:
		return TargetQuestion, false
	}
}

// Vote — голос пользователя; ровно одна из ссылок QuestionID/ReplyID/CommentID
// не nil. Инвариант: не более одного голоса per (user, target); повторный голос
// того же типа снимает его, голос другого типа переключает тип на месте.
type Vote struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	QuestionID *uuid.UUID
	ReplyID    *uuid.UUID
	CommentID  *uuid.UUID
	Type       VoteType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VoteAction — результат применения голоса.
type VoteAction string

const (
	VoteCreated VoteAction = "created"
	VoteUpdated VoteAction = "updated"
	VoteRemoved VoteAction = "removed"
)

// VoteResult — исход toggle-операции: действие и авторитетные счётчики,
// пересчитанные из строк votes в той же транзакции.
type VoteResult struct {
	Action     VoteAction
	Helpful    int32
	Insightful int32
}
