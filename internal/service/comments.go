package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

const maxCommentLen = 5000

// CreateCommentInput — параметры создания комментария.
// ParentCommentID, если задан, должен указывать на корневой комментарий
// того же ответа: допускается ровно один уровень вложенности.
type CreateCommentInput struct {
	ReplyID         uuid.UUID
	ParentCommentID *uuid.UUID
	Content         string
}

// CreateComment создаёт комментарий к ответу. Доступ — по правилам видимости
// вопроса, которому принадлежит ответ.
//
// Поведение/ошибки:
//   - ErrNotFound — ответ (или родительский комментарий) не найден;
//   - ErrInvalidArgument — превышена вложенность либо пустой текст;
//   - ErrConflict — вопрос ответа не PUBLISHED.
func (s *Service) CreateComment(ctx context.Context, actor models.Actor, in CreateCommentInput) (*models.Comment, error) {
	const op = "service.comments.CreateComment"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"reply_id", in.ReplyID.String(),
		"author_id", actor.ID.String(),
	)

	content := strings.TrimSpace(in.Content)
	if content == "" || len(content) > maxCommentLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	reply, err := s.storage.ReplyByID(ctx, in.ReplyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ReplyByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	q, err := s.storage.QuestionByID(ctx, reply.QuestionID)
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

	if q.Status != models.StatusPublished {
		return nil, fmt.Errorf("%s: %w", op, ErrConflict)
	}

	now := time.Now().UTC()
	c := &models.Comment{
		ID:              uuid.New(),
		ReplyID:         reply.ID,
		AuthorID:        actor.ID,
		ParentCommentID: in.ParentCommentID,
		Content:         content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.SaveComment(ctx, c); err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrMaxDepthExceeded):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on SaveComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("comment created", "comment_id", c.ID.String())

	return c, nil
}

// CommentsByReply возвращает страницу комментариев ответа, старые сверху.
// Доступ — по правилам видимости вопроса.
func (s *Service) CommentsByReply(ctx context.Context, actor models.Actor, replyID uuid.UUID, limit, offset int32) ([]models.Comment, error) {
	const op = "service.comments.CommentsByReply"

	lg := log.From(ctx).With("op", op, "reply_id", replyID.String())

	reply, err := s.storage.ReplyByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ReplyByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	q, err := s.storage.QuestionByID(ctx, reply.QuestionID)
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
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.storage.ListComments(ctx, replyID, limit, offset)
	if err != nil {
		lg.Error("storage error on ListComments", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return rows, nil
}

// UpdateComment редактирует текст комментария; разрешено автору и staff.
func (s *Service) UpdateComment(ctx context.Context, actor models.Actor, id uuid.UUID, content string) (*models.Comment, error) {
	const op = "service.comments.UpdateComment"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "comment_id", id.String())

	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxCommentLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	c, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on CommentByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if c.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	c.Content = content
	c.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateComment(ctx, c); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UpdateComment", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return c, nil
}

// DeleteComment удаляет комментарий (вместе с вложенными ответами на него);
// разрешено автору и staff.
func (s *Service) DeleteComment(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "service.comments.DeleteComment"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "comment_id", id.String())

	c, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on CommentByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if c.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeleteComment", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("comment deleted", "actor_id", actor.ID.String())

	return nil
}
