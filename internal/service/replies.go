package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/mailer"
	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

const maxReplyLen = 20000

// CreateReplyInput — параметры создания ответа.
type CreateReplyInput struct {
	QuestionID          uuid.UUID
	Content             string
	IsExpertPerspective bool
}

// CreateReply создаёт ответ на вопрос. Вопрос должен быть PUBLISHED и не
// solved. На приватный вопрос с запросом эксперта отвечают только expert-tier.
// Флаг IsExpertPerspective доступен только expert-tier. Автор вопроса
// получает уведомление и письмо fire-and-forget, если отвечает не он сам.
//
// Поведение/ошибки:
//   - ErrNotFound — вопрос не найден или скрыт от актора;
//   - ErrConflict — вопрос не PUBLISHED либо уже solved;
//   - ErrPermissionDenied — приватный экспертный вопрос, актор не expert-tier,
//     либо флаг экспертной точки зрения без экспертной роли.
func (s *Service) CreateReply(ctx context.Context, actor models.Actor, in CreateReplyInput) (*models.Reply, error) {
	const op = "service.replies.CreateReply"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", in.QuestionID.String(),
		"author_id", actor.ID.String(),
	)

	content := strings.TrimSpace(in.Content)
	if content == "" || len(content) > maxReplyLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.IsExpertPerspective && !actor.Role.IsExpertTier() {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	q, err := s.storage.QuestionByID(ctx, in.QuestionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !canViewQuestion(actor, q) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if q.Status != models.StatusPublished || q.IsSolved {
		return nil, fmt.Errorf("%s: %w", op, ErrConflict)
	}

	if q.IsPrivate && q.RequestExpert && !actor.Role.IsExpertTier() && actor.ID != q.AuthorID {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	now := time.Now().UTC()
	r := &models.Reply{
		ID:                  uuid.New(),
		QuestionID:          q.ID,
		AuthorID:            actor.ID,
		Content:             content,
		IsExpertPerspective: in.IsExpertPerspective,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.storage.SaveReply(ctx, r); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on SaveReply", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("reply created", "reply_id", r.ID.String())

	s.notifyReplied(ctx, actor, q, r)

	return r, nil
}

// notifyReplied — fan-out после ответа: запись уведомления и письмо автору
// вопроса. Сбои логируются и не влияют на исход операции.
func (s *Service) notifyReplied(ctx context.Context, actor models.Actor, q *models.Question, r *models.Reply) {
	if q.AuthorID == actor.ID {
		return
	}

	lg := log.From(ctx).With("question_id", q.ID.String(), "reply_id", r.ID.String())

	n := &models.Notification{
		ID:         uuid.New(),
		UserID:     q.AuthorID,
		ActorID:    actor.ID,
		Kind:       models.NotificationReply,
		QuestionID: q.ID,
		ReplyID:    &r.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.storage.SaveNotification(ctx, n); err != nil {
		lg.Warn("failed to save reply notification", "err", err)
	}

	recipient, err := s.storage.UserByID(ctx, q.AuthorID)
	if err != nil {
		lg.Warn("failed to load question author for mail", "err", err)
		return
	}

	mailer.SendAsync(ctx, s.mailer, mailer.Message{
		To:      recipient.Email,
		Subject: "Новый ответ на ваш вопрос",
		Body: fmt.Sprintf(
			"Здравствуйте, %s!\n\n%s ответил(а) на ваш вопрос «%s».\n\n%s/questions/%s\n",
			recipient.Username, actor.Username, q.Title, s.smtp.BaseURL, q.ID,
		),
	})
}

// RepliesByQuestion возвращает страницу ответов вопроса, старые сверху.
// Доступ — по правилам видимости самого вопроса.
func (s *Service) RepliesByQuestion(ctx context.Context, actor models.Actor, questionID uuid.UUID, limit, offset int32) ([]models.Reply, error) {
	const op = "service.replies.RepliesByQuestion"

	lg := log.From(ctx).With("op", op, "question_id", questionID.String())

	q, err := s.storage.QuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !canViewQuestion(actor, q) {
		if actor.IsAnonymous() {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.storage.ListReplies(ctx, questionID, limit, offset)
	if err != nil {
		lg.Error("storage error on ListReplies", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return rows, nil
}

// UpdateReplyInput — изменяемые поля ответа; nil — поле не трогаем.
type UpdateReplyInput struct {
	Content             *string
	IsExpertPerspective *bool
}

// UpdateReply редактирует ответ; разрешено автору и staff. Флаг экспертной
// точки зрения по-прежнему требует экспертной роли.
func (s *Service) UpdateReply(ctx context.Context, actor models.Actor, id uuid.UUID, in UpdateReplyInput) (*models.Reply, error) {
	const op = "service.replies.UpdateReply"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "reply_id", id.String())

	r, err := s.storage.ReplyByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ReplyByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if r.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" || len(content) > maxReplyLen {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		r.Content = content
	}

	if in.IsExpertPerspective != nil {
		if *in.IsExpertPerspective && !actor.Role.IsExpertTier() {
			return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
		}
		r.IsExpertPerspective = *in.IsExpertPerspective
	}

	r.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateReply(ctx, r); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UpdateReply", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return r, nil
}

// DeleteReply удаляет ответ; разрешено автору и staff. Ответ, связанный
// как принятое решение своего вопроса, удалить нельзя — ErrConflict.
func (s *Service) DeleteReply(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "service.replies.DeleteReply"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "reply_id", id.String())

	r, err := s.storage.ReplyByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ReplyByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if r.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteReply(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrSolutionBound):
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("storage error on DeleteReply", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("reply deleted", "actor_id", actor.ID.String())

	return nil
}
