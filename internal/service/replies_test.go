package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

func TestCreateReply_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New(), Username: "answerer"}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveReply(gomock.Any(), gomock.Any()).Return(nil)
	// fan-out автору вопроса
	st.EXPECT().SaveNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			require.Equal(t, models.NotificationReply, n.Kind)
			require.Equal(t, q.AuthorID, n.UserID)
			return nil
		})
	st.EXPECT().UserByID(gomock.Any(), q.AuthorID).Return(&models.User{
		ID:    q.AuthorID,
		Email: "asker@example.com",
	}, nil)

	r, err := svc.CreateReply(context.Background(), actor, CreateReplyInput{
		QuestionID: q.ID,
		Content:    "Попробуйте контровой свет.",
	})
	require.NoError(t, err)
	require.Equal(t, q.ID, r.QuestionID)
	require.Equal(t, actor.ID, r.AuthorID)
}

func TestCreateReply_SelfReplyNoNotification(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: actor.ID, Status: models.StatusPublished}

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveReply(gomock.Any(), gomock.Any()).Return(nil)
	// SaveNotification не ожидается: автор отвечает сам себе.

	_, err := svc.CreateReply(context.Background(), actor, CreateReplyInput{
		QuestionID: q.ID,
		Content:    "Дополню свой же вопрос.",
	})
	require.NoError(t, err)
}

func TestCreateReply_SolvedQuestionClosed(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	q := &models.Question{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		Status:   models.StatusPublished,
		IsSolved: true,
	}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	_, err := svc.CreateReply(context.Background(), actor, CreateReplyInput{
		QuestionID: q.ID,
		Content:    "Поздно.",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateReply_DraftClosed(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: author.ID, Status: models.StatusDraft}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	// Автор видит свой DRAFT, но отвечать на него нельзя.
	_, err := svc.CreateReply(context.Background(), author, CreateReplyInput{
		QuestionID: q.ID,
		Content:    "Отвечаю в черновик.",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateReply_PrivateExpertOnly(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	q := &models.Question{
		ID:            uuid.New(),
		AuthorID:      uuid.New(),
		Status:        models.StatusPublished,
		IsPrivate:     true,
		RequestExpert: true,
	}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	// Обычный участник не видит приватный экспертный вопрос — получает NotFound.
	_, err := svc.CreateReply(context.Background(), member, CreateReplyInput{
		QuestionID: q.ID,
		Content:    "Хочу ответить.",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReply_ExpertPerspectiveRequiresRole(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	_, err := svc.CreateReply(context.Background(), member, CreateReplyInput{
		QuestionID:          uuid.New(),
		Content:             "Моё экспертное мнение.",
		IsExpertPerspective: true,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteReply_SolutionBound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New()}
	r := &models.Reply{ID: uuid.New(), QuestionID: uuid.New(), AuthorID: author.ID}

	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)
	st.EXPECT().DeleteReply(gomock.Any(), r.ID).Return(storage.ErrSolutionBound)

	err := svc.DeleteReply(context.Background(), author, r.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteReply_Stranger(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	r := &models.Reply{ID: uuid.New(), QuestionID: uuid.New(), AuthorID: uuid.New()}
	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)

	stranger := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	err := svc.DeleteReply(context.Background(), stranger, r.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateReply_ExpertFlagGate(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	r := &models.Reply{ID: uuid.New(), QuestionID: uuid.New(), AuthorID: author.ID}
	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)

	flag := true
	_, err := svc.UpdateReply(context.Background(), author, r.ID, UpdateReplyInput{
		IsExpertPerspective: &flag,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRepliesByQuestion_HiddenFromStranger(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	q := &models.Question{
		ID:        uuid.New(),
		AuthorID:  uuid.New(),
		Status:    models.StatusPublished,
		IsPrivate: true,
	}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	stranger := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	_, err := svc.RepliesByQuestion(context.Background(), stranger, q.ID, 10, 0)
	require.ErrorIs(t, err, ErrPermissionDenied)
}
