package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

// SaveNotification создаёт запись уведомления.
func (s *Storage) SaveNotification(ctx context.Context, n *models.Notification) error {
	const op = "storage.postgres.SaveNotification"

	query := `
		INSERT INTO notifications(id, user_id, actor_id, kind, question_id, reply_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`

	_, err := s.db.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.ActorID,
		n.Kind.String(),
		n.QuestionID,
		n.ReplyID,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListNotifications возвращает уведомления получателя: непрочитанные сверху,
// внутри группы — новые сверху.
func (s *Storage) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]models.Notification, error) {
	const op = "storage.postgres.ListNotifications"

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, actor_id, kind, question_id, reply_id, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY read ASC, created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var (
			n    models.Notification
			kind string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.ActorID, &kind, &n.QuestionID, &n.ReplyID, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		switch kind {
		case "solve":
			n.Kind = models.NotificationSolve
		case "claim":
			n.Kind = models.NotificationClaim
		default:
			n.Kind = models.NotificationReply
		}

		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// MarkNotificationRead помечает уведомление прочитанным; условие user_id
// не даёт читать чужие уведомления.
func (s *Storage) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	const op = "storage.postgres.MarkNotificationRead"

	tag, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// MarkAllNotificationsRead помечает все уведомления получателя прочитанными.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	const op = "storage.postgres.MarkAllNotificationsRead"

	if _, err := s.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MarkQuestionNotificationsRead — просмотр вопроса гасит связанные уведомления.
func (s *Storage) MarkQuestionNotificationsRead(ctx context.Context, userID, questionID uuid.UUID) error {
	const op = "storage.postgres.MarkQuestionNotificationsRead"

	if _, err := s.db.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE user_id = $1 AND question_id = $2 AND read = FALSE
	`, userID, questionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
