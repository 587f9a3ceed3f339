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

// voteTargetSpec — соответствие цели голоса её таблице и колонке в votes.
type voteTargetSpec struct {
	table  string
	column string
	id     uuid.UUID
}

func targetSpec(v models.Vote) (voteTargetSpec, error) {
	switch {
	case v.QuestionID != nil:
		return voteTargetSpec{table: "questions", column: "question_id", id: *v.QuestionID}, nil
	case v.ReplyID != nil:
		return voteTargetSpec{table: "replies", column: "reply_id", id: *v.ReplyID}, nil
	case v.CommentID != nil:
		return voteTargetSpec{table: "comments", column: "comment_id", id: *v.CommentID}, nil
	default:
		return voteTargetSpec{}, errors.New("vote has no target")
	}
}

// ToggleVote применяет голос в одной транзакции:
// целевая строка блокируется FOR UPDATE, существующий голос определяет исход
// (создание / переключение типа / снятие), денормализованные счётчики цели
// правятся тем же commit'ом, а авторитетные тоталы пересчитываются из строк
// votes перед возвратом — ответ наружу не доверяет инкрементам.
func (s *Storage) ToggleVote(ctx context.Context, vote models.Vote) (*models.VoteResult, error) {
	const op = "storage.postgres.ToggleVote"

	spec, err := targetSpec(vote)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Блокировка целевой строки сериализует конкурирующие toggle по цели.
	var targetExists uuid.UUID
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, spec.table),
		spec.id,
	).Scan(&targetExists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		existingID   uuid.UUID
		existingType string
	)
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, vote_type FROM votes WHERE user_id = $1 AND %s = $2`, spec.column),
		vote.UserID, spec.id,
	).Scan(&existingID, &existingType)

	var action models.VoteAction
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// Голоса не было — создаём.
		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			INSERT INTO votes(id, user_id, question_id, reply_id, comment_id, vote_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, uuid.New(), vote.UserID, vote.QuestionID, vote.ReplyID, vote.CommentID, vote.Type.String(), now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := adjustCounter(ctx, tx, spec, vote.Type, +1); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		action = models.VoteCreated

	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)

	case existingType == vote.Type.String():
		// Повторный голос того же типа — toggle off.
		if _, err := tx.Exec(ctx, `DELETE FROM votes WHERE id = $1`, existingID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := adjustCounter(ctx, tx, spec, vote.Type, -1); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		action = models.VoteRemoved

	default:
		// Голос другого типа — переключаем на месте: суммарное число голосов
		// не меняется, единица переезжает между корзинами.
		if _, err := tx.Exec(ctx,
			`UPDATE votes SET vote_type = $2, updated_at = $3 WHERE id = $1`,
			existingID, vote.Type.String(), time.Now().UTC(),
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		oldType := models.VoteHelpful
		if existingType == models.VoteInsightful.String() {
			oldType = models.VoteInsightful
		}
		if err := adjustCounter(ctx, tx, spec, oldType, -1); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := adjustCounter(ctx, tx, spec, vote.Type, +1); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		action = models.VoteUpdated
	}

	// Авторитетный пересчёт из строк votes той же транзакцией.
	result := models.VoteResult{Action: action}
	err = tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE vote_type = 'helpful'),
			COUNT(*) FILTER (WHERE vote_type = 'insightful')
		FROM votes WHERE %s = $1
	`, spec.column), spec.id).Scan(&result.Helpful, &result.Insightful)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &result, nil
}

// adjustCounter правит денормализованный счётчик целевой строки.
func adjustCounter(ctx context.Context, tx pgx.Tx, spec voteTargetSpec, t models.VoteType, delta int) error {
	column := "helpful_count"
	if t == models.VoteInsightful {
		column = "insightful_count"
	}

	_, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET %s = GREATEST(%s + $2, 0) WHERE id = $1`,
		spec.table, column, column,
	), spec.id, delta)

	return err
}
