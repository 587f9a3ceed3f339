package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

// SaveReply создаёт ответ и инкрементирует reply_count вопроса
// в одной транзакции (спецметрики поддерживаются консистентно со вставкой).
func (s *Storage) SaveReply(ctx context.Context, r *models.Reply) error {
	const op = "storage.postgres.SaveReply"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO replies(id, question_id, author_id, content, is_expert_perspective,
			helpful_count, insightful_count, comment_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, 0, $6, $7)
	`,
		r.ID,
		r.QuestionID,
		r.AuthorID,
		r.Content,
		r.IsExpertPerspective,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE questions SET reply_count = reply_count + 1 WHERE id = $1`, r.QuestionID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const replyColumns = `id, question_id, author_id, content, is_expert_perspective,
	helpful_count, insightful_count, comment_count, created_at, updated_at`

func scanReply(row pgx.Row) (*models.Reply, error) {
	var r models.Reply
	err := row.Scan(
		&r.ID,
		&r.QuestionID,
		&r.AuthorID,
		&r.Content,
		&r.IsExpertPerspective,
		&r.HelpfulCount,
		&r.InsightfulCount,
		&r.CommentCount,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ReplyByID находит ответ по ID.
func (s *Storage) ReplyByID(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	const op = "storage.postgres.ReplyByID"

	query := `SELECT ` + replyColumns + ` FROM replies WHERE id = $1`

	r, err := scanReply(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r, nil
}

// ListReplies возвращает ответы вопроса, старые сверху.
func (s *Storage) ListReplies(ctx context.Context, questionID uuid.UUID, limit, offset int32) ([]models.Reply, error) {
	const op = "storage.postgres.ListReplies"

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + replyColumns + ` FROM replies
		WHERE question_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, questionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Reply
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateReply обновляет content и флаг экспертного мнения.
func (s *Storage) UpdateReply(ctx context.Context, r *models.Reply) error {
	const op = "storage.postgres.UpdateReply"

	query := `
		UPDATE replies
		SET content = $2, is_expert_perspective = $3, updated_at = $4
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, r.ID, r.Content, r.IsExpertPerspective, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteReply удаляет ответ и декрементирует reply_count вопроса.
// Ответ, связанный как решение вопроса, удалить нельзя (ErrSolutionBound).
func (s *Storage) DeleteReply(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteReply"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var questionID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT question_id FROM replies WHERE id = $1 FOR UPDATE`, id,
	).Scan(&questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	var bound bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1 AND solved_by_reply_id = $2)`,
		questionID, id,
	).Scan(&bound)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if bound {
		return fmt.Errorf("%s: %w", op, storage.ErrSolutionBound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM replies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE questions SET reply_count = reply_count - 1 WHERE id = $1 AND reply_count > 0`,
		questionID,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
