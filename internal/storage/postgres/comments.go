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

// SaveComment создаёт комментарий и инкрементирует comment_count ответа
// в одной транзакции. Допустимы два уровня: корень и ответ на корень.
func (s *Storage) SaveComment(ctx context.Context, c *models.Comment) error {
	const op = "storage.postgres.SaveComment"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if c.ParentCommentID != nil {
		var (
			parentReply  uuid.UUID
			parentParent *uuid.UUID
		)
		err = tx.QueryRow(ctx,
			`SELECT reply_id, parent_comment_id FROM comments WHERE id = $1`,
			*c.ParentCommentID,
		).Scan(&parentReply, &parentParent)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		if parentReply != c.ReplyID {
			return fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}
		if parentParent != nil {
			return fmt.Errorf("%s: %w", op, storage.ErrMaxDepthExceeded)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO comments(id, reply_id, author_id, parent_comment_id, content,
			helpful_count, insightful_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
	`,
		c.ID,
		c.ReplyID,
		c.AuthorID,
		c.ParentCommentID,
		c.Content,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE replies SET comment_count = comment_count + 1 WHERE id = $1`, c.ReplyID,
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

const commentColumns = `id, reply_id, author_id, parent_comment_id, content,
	helpful_count, insightful_count, created_at, updated_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID,
		&c.ReplyID,
		&c.AuthorID,
		&c.ParentCommentID,
		&c.Content,
		&c.HelpfulCount,
		&c.InsightfulCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CommentByID находит комментарий по ID.
func (s *Storage) CommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	const op = "storage.postgres.CommentByID"

	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	c, err := scanComment(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// ListComments возвращает комментарии ответа, старые сверху.
func (s *Storage) ListComments(ctx context.Context, replyID uuid.UUID, limit, offset int32) ([]models.Comment, error) {
	const op = "storage.postgres.ListComments"

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + commentColumns + ` FROM comments
		WHERE reply_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, replyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateComment обновляет content.
func (s *Storage) UpdateComment(ctx context.Context, c *models.Comment) error {
	const op = "storage.postgres.UpdateComment"

	tag, err := s.db.Exec(ctx,
		`UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`,
		c.ID, c.Content, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteComment удаляет комментарий (вместе с ответами на него по FK)
// и декрементирует comment_count ответа.
func (s *Storage) DeleteComment(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteComment"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var replyID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT reply_id FROM comments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&replyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	// Каскад FK убирает и дочерние комментарии; счётчик правим по факту.
	tag, err := tx.Exec(ctx,
		`DELETE FROM comments WHERE id = $1 OR parent_comment_id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE replies
		SET comment_count = GREATEST(comment_count - $2, 0)
		WHERE id = $1
	`, replyID, tag.RowsAffected()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
