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

const (
	maxTitleLen   = 200
	maxContentLen = 20000
)

// CreateQuestionInput — параметры создания вопроса.
type CreateQuestionInput struct {
	Title         string
	Content       string
	IsPrivate     bool
	RequestExpert bool
}

// UpdateQuestionInput — изменяемые поля вопроса; nil — поле не трогаем.
type UpdateQuestionInput struct {
	Title         *string
	Content       *string
	IsPrivate     *bool
	RequestExpert *bool
}

// CreateQuestion создаёт вопрос. Статус выбирается однократно по признаку
// подтверждённого email актора: подтверждён — PUBLISHED, нет — DRAFT.
// Последующее подтверждение email черновики задним числом не публикует.
func (s *Service) CreateQuestion(ctx context.Context, actor models.Actor, in CreateQuestionInput) (*models.Question, error) {
	const op = "service.questions.CreateQuestion"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "author_id", actor.ID.String())

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	if title == "" || len(title) > maxTitleLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}
	if content == "" || len(content) > maxContentLen {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	status := models.StatusDraft
	if actor.EmailVerified {
		status = models.StatusPublished
	}

	now := time.Now().UTC()
	q := &models.Question{
		ID:            uuid.New(),
		AuthorID:      actor.ID,
		Title:         title,
		Content:       content,
		Status:        status,
		IsPrivate:     in.IsPrivate,
		RequestExpert: in.RequestExpert,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.storage.SaveQuestion(ctx, q); err != nil {
		lg.Error("storage error on SaveQuestion", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("question created",
		"question_id", q.ID.String(),
		"status", q.Status.String(),
	)

	return q, nil
}

// canViewQuestion — правила видимости вопроса:
//   - staff и автор видят всегда;
//   - DRAFT и HIDDEN видны только автору и staff;
//   - приватный вопрос с запросом эксперта виден expert-tier;
//   - приватный без запроса эксперта — только автору и staff.
func canViewQuestion(actor models.Actor, q *models.Question) bool {
	if actor.Role.IsStaff() || actor.ID == q.AuthorID {
		return true
	}

	if q.Status != models.StatusPublished {
		return false
	}

	if q.IsPrivate {
		return q.RequestExpert && actor.Role.IsExpertTier()
	}

	return true
}

// QuestionByID возвращает вопрос с учётом правил видимости. Просмотр
// аутентифицированным зрителем гасит его уведомления по этому вопросу
// (сбой пометки только логируется).
//
// Поведение/ошибки:
//   - ErrNotFound — вопрос не найден;
//   - ErrUnauthenticated — вопрос скрыт, зритель анонимен;
//   - ErrPermissionDenied — вопрос скрыт для зрителя.
func (s *Service) QuestionByID(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Question, error) {
	const op = "service.questions.QuestionByID"

	lg := log.From(ctx).With("op", op, "question_id", id.String())

	q, err := s.storage.QuestionByID(ctx, id)
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

		lg.Warn("question hidden from viewer", "viewer_id", actor.ID.String())
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if !actor.IsAnonymous() {
		if err := s.storage.MarkQuestionNotificationsRead(ctx, actor.ID, q.ID); err != nil {
			lg.Warn("failed to mark question notifications read", "err", err)
		}
	}

	return q, nil
}

// ListQuestionsInput — параметры листинга вопросов.
type ListQuestionsInput struct {
	AuthorID *uuid.UUID
	Status   *models.QuestionStatus
	Limit    int32
	Offset   int32
}

// ListQuestions возвращает страницу вопросов, отфильтрованную правилами
// видимости зрителя. Невидимые строки молча опускаются из страницы.
func (s *Service) ListQuestions(ctx context.Context, actor models.Actor, in ListQuestionsInput) ([]models.Question, error) {
	const op = "service.questions.ListQuestions"

	lg := log.From(ctx).With("op", op)

	if in.Limit <= 0 || in.Limit > 100 {
		in.Limit = 20
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	rows, err := s.storage.ListQuestions(ctx, storage.QuestionFilter{
		AuthorID: in.AuthorID,
		Status:   in.Status,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		lg.Error("storage error on ListQuestions", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	visible := make([]models.Question, 0, len(rows))
	for i := range rows {
		if canViewQuestion(actor, &rows[i]) {
			visible = append(visible, rows[i])
		}
	}

	return visible, nil
}

// UpdateQuestion редактирует вопрос; разрешено автору и staff.
func (s *Service) UpdateQuestion(ctx context.Context, actor models.Actor, id uuid.UUID, in UpdateQuestionInput) (*models.Question, error) {
	const op = "service.questions.UpdateQuestion"

	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "question_id", id.String())

	q, err := s.storage.QuestionByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if q.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || len(title) > maxTitleLen {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		q.Title = title
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" || len(content) > maxContentLen {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
		q.Content = content
	}

	if in.IsPrivate != nil {
		q.IsPrivate = *in.IsPrivate
	}

	if in.RequestExpert != nil {
		q.RequestExpert = *in.RequestExpert
	}

	q.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateQuestionContent(ctx, q); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UpdateQuestionContent", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return q, nil
}

// DeleteQuestion удаляет вопрос вместе с порождёнными строками;
// разрешено автору и staff.
func (s *Service) DeleteQuestion(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "service.questions.DeleteQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "question_id", id.String())

	q, err := s.storage.QuestionByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if q.AuthorID != actor.ID && !actor.Role.IsStaff() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.DeleteQuestion(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeleteQuestion", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("question deleted", "actor_id", actor.ID.String())

	return nil
}

// HideQuestion скрывает вопрос из публичной выдачи; только staff.
func (s *Service) HideQuestion(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "service.questions.HideQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if !actor.Role.IsStaff() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	lg := log.From(ctx).With("op", op, "question_id", id.String())

	if err := s.storage.SetQuestionStatus(ctx, id, models.StatusHidden); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on SetQuestionStatus", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("question hidden", "actor_id", actor.ID.String())

	return nil
}

// SolveQuestion помечает ответ принятым решением; только автор вопроса.
// Автор решения (если это не сам автор вопроса) получает уведомление
// и письмо fire-and-forget.
//
// Поведение/ошибки:
//   - ErrNotFound — вопрос не найден;
//   - ErrConflict — вопрос уже решён либо reply принадлежит другому вопросу;
//   - ErrPermissionDenied — актор не автор вопроса.
func (s *Service) SolveQuestion(ctx context.Context, actor models.Actor, questionID, replyID uuid.UUID) error {
	const op = "service.questions.SolveQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", questionID.String(),
		"reply_id", replyID.String(),
	)

	q, err := s.storage.QuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if q.AuthorID != actor.ID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.SolveQuestion(ctx, questionID, replyID); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrForeignReply), errors.Is(err, storage.ErrConflict):
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("storage error on SolveQuestion", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("question solved")

	s.notifySolved(ctx, actor, q, replyID)

	return nil
}

// notifySolved — fan-out после принятия решения: запись уведомления и письмо
// автору принятого ответа. Сбои логируются и не влияют на исход операции.
func (s *Service) notifySolved(ctx context.Context, actor models.Actor, q *models.Question, replyID uuid.UUID) {
	lg := log.From(ctx).With("question_id", q.ID.String(), "reply_id", replyID.String())

	reply, err := s.storage.ReplyByID(ctx, replyID)
	if err != nil {
		lg.Warn("failed to load solving reply for notification", "err", err)
		return
	}

	if reply.AuthorID == actor.ID {
		return
	}

	n := &models.Notification{
		ID:         uuid.New(),
		UserID:     reply.AuthorID,
		ActorID:    actor.ID,
		Kind:       models.NotificationSolve,
		QuestionID: q.ID,
		ReplyID:    &replyID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.storage.SaveNotification(ctx, n); err != nil {
		lg.Warn("failed to save solve notification", "err", err)
	}

	recipient, err := s.storage.UserByID(ctx, reply.AuthorID)
	if err != nil {
		lg.Warn("failed to load reply author for mail", "err", err)
		return
	}

	mailer.SendAsync(ctx, s.mailer, mailer.Message{
		To:      recipient.Email,
		Subject: "Ваш ответ принят решением",
		Body: fmt.Sprintf(
			"Здравствуйте, %s!\n\nВаш ответ на вопрос «%s» принят автором как решение.\n\n%s/questions/%s\n",
			recipient.Username, q.Title, s.smtp.BaseURL, q.ID,
		),
	})
}

// UnsolveQuestion снимает отметку решения; только автор вопроса.
func (s *Service) UnsolveQuestion(ctx context.Context, actor models.Actor, questionID uuid.UUID) error {
	const op = "service.questions.UnsolveQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op, "question_id", questionID.String())

	q, err := s.storage.QuestionByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on QuestionByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if q.AuthorID != actor.ID {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	if err := s.storage.UnsolveQuestion(ctx, questionID); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrConflict):
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("storage error on UnsolveQuestion", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("question unsolved")

	return nil
}

// ClaimQuestion берёт вопрос в работу экспертом. Назначение делается условным
// UPDATE в хранилище: из гонки двух экспертов ровно один получает клейм,
// второй — ErrConflict. Автор вопроса получает уведомление (не письмо).
//
// Предусловия: вопрос PUBLISHED, request_expert, не solved, не claimed.
//
// Поведение/ошибки:
//   - ErrPermissionDenied — актор не expert-tier;
//   - ErrNotFound — вопрос не найден;
//   - ErrConflict — предусловия не выполнены либо клейм уже занят.
func (s *Service) ClaimQuestion(ctx context.Context, actor models.Actor, questionID uuid.UUID) error {
	const op = "service.questions.ClaimQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if !actor.Role.IsExpertTier() {
		return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", questionID.String(),
		"expert_id", actor.ID.String(),
	)

	if err := s.storage.ClaimQuestion(ctx, questionID, actor.ID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrConflict):
			lg.Warn("claim lost or preconditions failed")
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("storage error on ClaimQuestion", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("question claimed")

	q, err := s.storage.QuestionByID(ctx, questionID)
	if err != nil {
		lg.Warn("failed to load question for claim notification", "err", err)
		return nil
	}

	if q.AuthorID != actor.ID {
		n := &models.Notification{
			ID:         uuid.New(),
			UserID:     q.AuthorID,
			ActorID:    actor.ID,
			Kind:       models.NotificationClaim,
			QuestionID: q.ID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.storage.SaveNotification(ctx, n); err != nil {
			lg.Warn("failed to save claim notification", "err", err)
		}
	}

	return nil
}

// UnclaimQuestion снимает назначение; только текущий клеймер.
func (s *Service) UnclaimQuestion(ctx context.Context, actor models.Actor, questionID uuid.UUID) error {
	const op = "service.questions.UnclaimQuestion"

	if actor.IsAnonymous() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	lg := log.From(ctx).With("op", op,
		"question_id", questionID.String(),
		"expert_id", actor.ID.String(),
	)

	if err := s.storage.UnclaimQuestion(ctx, questionID, actor.ID); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrConflict):
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			lg.Error("storage error on UnclaimQuestion", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("question unclaimed")

	return nil
}
