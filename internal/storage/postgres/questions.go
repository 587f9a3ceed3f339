package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

// SaveQuestion создаёт новый вопрос.
func (s *Storage) SaveQuestion(ctx context.Context, q *models.Question) error {
	const op = "storage.postgres.SaveQuestion"

	query := `
		INSERT INTO questions(id, author_id, title, content, status, is_private, request_expert,
			is_solved, reply_count, helpful_count, insightful_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, 0, 0, 0, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		q.ID,
		q.AuthorID,
		q.Title,
		q.Content,
		q.Status.String(),
		q.IsPrivate,
		q.RequestExpert,
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const questionColumns = `id, author_id, title, content, status, is_private, request_expert,
	is_solved, solved_by_reply_id, expert_claimed_by, expert_claimed_at,
	reply_count, helpful_count, insightful_count, created_at, updated_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var (
		q      models.Question
		status string
	)

	err := row.Scan(
		&q.ID,
		&q.AuthorID,
		&q.Title,
		&q.Content,
		&status,
		&q.IsPrivate,
		&q.RequestExpert,
		&q.IsSolved,
		&q.SolvedByReplyID,
		&q.ExpertClaimedByID,
		&q.ExpertClaimedAt,
		&q.ReplyCount,
		&q.HelpfulCount,
		&q.InsightfulCount,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch status {
	case "published":
		q.Status = models.StatusPublished
	case "hidden":
		q.Status = models.StatusHidden
	default:
		q.Status = models.StatusDraft
	}

	return &q, nil
}

// QuestionByID находит вопрос по ID.
func (s *Storage) QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const op = "storage.postgres.QuestionByID"

	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	q, err := scanQuestion(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return q, nil
}

// ListQuestions возвращает вопросы по фильтру, новые сверху.
func (s *Storage) ListQuestions(ctx context.Context, f storage.QuestionFilter) ([]models.Question, error) {
	const op = "storage.postgres.ListQuestions"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	args := []any{}

	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		query += fmt.Sprintf(" AND author_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, f.Status.String())
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateQuestionContent обновляет title/content/is_private/request_expert.
func (s *Storage) UpdateQuestionContent(ctx context.Context, q *models.Question) error {
	const op = "storage.postgres.UpdateQuestionContent"

	query := `
		UPDATE questions
		SET title = $2, content = $3, is_private = $4, request_expert = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		q.ID,
		q.Title,
		q.Content,
		q.IsPrivate,
		q.RequestExpert,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteQuestion удаляет вопрос; порождённые строки снимаются каскадом FK.
func (s *Storage) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteQuestion"

	tag, err := s.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SetQuestionStatus переводит вопрос в новый статус (модерация).
func (s *Storage) SetQuestionStatus(ctx context.Context, id uuid.UUID, status models.QuestionStatus) error {
	const op = "storage.postgres.SetQuestionStatus"

	query := `UPDATE questions SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, status.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SolveQuestion помечает reply принятым решением вопроса.
// Принадлежность reply и guard is_solved проверяются в одной транзакции,
// так что параллельные solve сериализуются условным UPDATE.
func (s *Storage) SolveQuestion(ctx context.Context, questionID, replyID uuid.UUID) error {
	const op = "storage.postgres.SolveQuestion"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var ownerQuestion uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT question_id FROM replies WHERE id = $1`, replyID,
	).Scan(&ownerQuestion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if ownerQuestion != questionID {
		return fmt.Errorf("%s: %w", op, storage.ErrForeignReply)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE questions
		SET is_solved = TRUE, solved_by_reply_id = $2, updated_at = now()
		WHERE id = $1 AND is_solved = FALSE
	`, questionID, replyID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		if err := s.classifyQuestionMiss(ctx, tx, questionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UnsolveQuestion снимает отметку решения.
func (s *Storage) UnsolveQuestion(ctx context.Context, questionID uuid.UUID) error {
	const op = "storage.postgres.UnsolveQuestion"

	tag, err := s.db.Exec(ctx, `
		UPDATE questions
		SET is_solved = FALSE, solved_by_reply_id = NULL, updated_at = now()
		WHERE id = $1 AND is_solved = TRUE
	`, questionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		if err := s.classifyQuestionMiss(ctx, s.db, questionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// ClaimQuestion назначает вопрос эксперту условным UPDATE:
// первый успевший commit выигрывает, остальные получают ErrConflict.
func (s *Storage) ClaimQuestion(ctx context.Context, questionID, userID uuid.UUID, at time.Time) error {
	const op = "storage.postgres.ClaimQuestion"

	tag, err := s.db.Exec(ctx, `
		UPDATE questions
		SET expert_claimed_by = $2, expert_claimed_at = $3, updated_at = now()
		WHERE id = $1
		  AND expert_claimed_by IS NULL
		  AND request_expert = TRUE
		  AND is_solved = FALSE
		  AND status = 'published'
	`, questionID, userID, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		if err := s.classifyQuestionMiss(ctx, s.db, questionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// UnclaimQuestion снимает назначение; условие userID гарантирует,
// что снять может только текущий клеймер.
func (s *Storage) UnclaimQuestion(ctx context.Context, questionID, userID uuid.UUID) error {
	const op = "storage.postgres.UnclaimQuestion"

	tag, err := s.db.Exec(ctx, `
		UPDATE questions
		SET expert_claimed_by = NULL, expert_claimed_at = NULL, updated_at = now()
		WHERE id = $1 AND expert_claimed_by = $2
	`, questionID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		if err := s.classifyQuestionMiss(ctx, s.db, questionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// querier — общий срез pgx-интерфейса для пула и транзакции.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// classifyQuestionMiss различает «вопроса нет» и «предусловие не выполнено»
// после условного UPDATE, затронувшего 0 строк.
func (s *Storage) classifyQuestionMiss(ctx context.Context, q querier, questionID uuid.UUID) error {
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, questionID,
	).Scan(&exists); err != nil {
		return err
	}

	if !exists {
		return storage.ErrNotFound
	}

	return storage.ErrConflict
}
