package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// VoteInput — параметры toggle-голосования.
type VoteInput struct {
	Target   models.VoteTarget
	TargetID uuid.UUID
	Type     models.VoteType
}

// ToggleVote применяет голос актора к цели. Семантика toggle:
// нет голоса — создаётся; есть того же типа — снимается; есть другого
// типа — переключается на месте. Вся работа со счётчиками выполняется
// хранилищем в одной транзакции, возвращаются авторитетные тоталы.
//
// Поведение/ошибки:
//   - ErrNotFound — цель не найдена или скрыта от актора;
//   - ErrUnauthenticated — анонимный актор.
func (s *Service) ToggleVote(ctx context.Context, actor models.Actor, in VoteInput) (*models.VoteResult, error) {
	const op = "service.votes.ToggleVote"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"target", in.Target.String(),
		"target_id", in.TargetID.String(),
		"user_id", actor.ID.String(),
	)

	if in.TargetID == uuid.Nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.checkVoteTarget(ctx, actor, in.Target, in.TargetID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vote := models.Vote{
		ID:        uuid.New(),
		UserID:    actor.ID,
		Type:      in.Type,
		CreatedAt: time.Now().UTC(),
	}

	switch in.Target {
	case models.TargetQuestion:
		vote.QuestionID = &in.TargetID
	case models.TargetReply:
		vote.ReplyID = &in.TargetID
	case models.TargetComment:
		vote.CommentID = &in.TargetID
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	res, err := s.storage.ToggleVote(ctx, vote)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ToggleVote", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("vote toggled",
		"action", string(res.Action),
		"vote_type", in.Type.String(),
	)

	return res, nil
}

// checkVoteTarget проверяет существование цели голоса и видимость
// объемлющего вопроса для актора. Невидимая цель для актора неотличима
// от несуществующей.
func (s *Service) checkVoteTarget(ctx context.Context, actor models.Actor, target models.VoteTarget, id uuid.UUID) error {
	var questionID uuid.UUID

	switch target {
	case models.TargetQuestion:
		questionID = id
	case models.TargetReply:
		reply, err := s.storage.ReplyByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return ErrInternal
		}
		questionID = reply.QuestionID
	case models.TargetComment:
		comment, err := s.storage.CommentByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return ErrInternal
		}

		reply, err := s.storage.ReplyByID(ctx, comment.ReplyID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return ErrInternal
		}
		questionID = reply.QuestionID
	default:
		return ErrInvalidArgument
	}

	q, err := s.storage.QuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	if !canViewQuestion(actor, q) {
		return ErrNotFound
	}

	return nil
}
