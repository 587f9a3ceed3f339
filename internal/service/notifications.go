package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
	"github.com/the-dramaturgy/dramaturgy-service/pkg/log"
)

// Notifications возвращает страницу уведомлений актора, непрочитанные сверху.
func (s *Service) Notifications(ctx context.Context, actor models.Actor, limit, offset int32) ([]models.Notification, error) {
	const op = "service.notifications.Notifications"

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

	rows, err := s.storage.ListNotifications(ctx, actor.ID, limit, offset)
	if err != nil {
		lg.Error("storage error on ListNotifications", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return rows, nil
}

// MarkNotificationRead помечает уведомление прочитанным; только своё.
func (s *Service) MarkNotificationRead(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "service.notifications.MarkNotificationRead"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "notification_id", id.String())

	if err := s.storage.MarkNotificationRead(ctx, id, actor.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on MarkNotificationRead", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}

// MarkAllNotificationsRead помечает все уведомления актора прочитанными.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor models.Actor) error {
	const op = "service.notifications.MarkAllNotificationsRead"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "user_id", actor.ID.String())

	if err := s.storage.MarkAllNotificationsRead(ctx, actor.ID); err != nil {
		lg.Error("storage error on MarkAllNotificationsRead", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return nil
}
