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

// AddBookmark создаёт закладку актора на вопрос. Повторная закладка
// на тот же вопрос возвращает ErrConflict.
func (s *Service) AddBookmark(ctx context.Context, actor models.Actor, questionID uuid.UUID) (*models.Bookmark, error) {
	const op = "service.bookmarks.AddBookmark"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", questionID.String(),
		"user_id", actor.ID.String(),
	)

	q, err := s.storage.QuestionByID(ctx, questionID)
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

	b := &models.Bookmark{
		ID:         uuid.New(),
		UserID:     actor.ID,
		QuestionID: questionID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.storage.SaveBookmark(ctx, b); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrConflict)
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on SaveBookmark", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return b, nil
}

// RemoveBookmark удаляет закладку актора на вопрос.
func (s *Service) RemoveBookmark(ctx context.Context, actor models.Actor, questionID uuid.UUID) error {
	const op = "service.bookmarks.RemoveBookmark"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", questionID.String(),
		"user_id", actor.ID.String(),
	)

	if err := s.storage.DeleteBookmark(ctx, actor.ID, questionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeleteBookmark", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// Bookmarks возвращает страницу закладок актора, новые сверху.
func (s *Service) Bookmarks(ctx context.Context, actor models.Actor, limit, offset int32) ([]models.Bookmark, error) {
	const op = "service.bookmarks.Bookmarks"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "user_id", actor.ID.String())

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.storage.ListBookmarks(ctx, actor.ID, limit, offset)
	if err != nil {
		lg.Error("storage error on ListBookmarks", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return rows, nil
}
