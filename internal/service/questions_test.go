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

func TestCreateQuestion_VerifiedPublishes(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveQuestion(gomock.Any(), gomock.Any()).Return(nil)

	actor := models.Actor{ID: uuid.New(), EmailVerified: true}
	q, err := svc.CreateQuestion(context.Background(), actor, CreateQuestionInput{
		Title:   "Как поставить свет в камерной сцене?",
		Content: "Подробности внутри.",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, q.Status)
	require.Equal(t, actor.ID, q.AuthorID)
}

func TestCreateQuestion_UnverifiedDrafts(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().SaveQuestion(gomock.Any(), gomock.Any()).Return(nil)

	actor := models.Actor{ID: uuid.New(), EmailVerified: false}
	q, err := svc.CreateQuestion(context.Background(), actor, CreateQuestionInput{
		Title:   "Вопрос без подтверждённого email",
		Content: "Текст.",
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, q.Status)
}

func TestCreateQuestion_Anonymous(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.CreateQuestion(context.Background(), models.Actor{}, CreateQuestionInput{
		Title:   "t",
		Content: "c",
	})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateQuestion_EmptyTitle(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New(), EmailVerified: true}
	_, err := svc.CreateQuestion(context.Background(), actor, CreateQuestionInput{
		Title:   "   ",
		Content: "c",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestQuestionByID_VisibilityMatrix(t *testing.T) {
	t.Parallel()

	authorID := uuid.New()
	expert := models.Actor{ID: uuid.New(), Role: models.RoleExpert}
	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	mod := models.Actor{ID: uuid.New(), Role: models.RoleModerator}
	author := models.Actor{ID: authorID}

	mk := func(status models.QuestionStatus, private, reqExpert bool) *models.Question {
		return &models.Question{
			ID:            uuid.New(),
			AuthorID:      authorID,
			Status:        status,
			IsPrivate:     private,
			RequestExpert: reqExpert,
		}
	}

	tests := []struct {
		name  string
		actor models.Actor
		q     *models.Question
		want  bool
	}{
		{"public_published_anon", models.Actor{}, mk(models.StatusPublished, false, false), true},
		{"draft_member", member, mk(models.StatusDraft, false, false), false},
		{"draft_author", author, mk(models.StatusDraft, false, false), true},
		{"draft_staff", mod, mk(models.StatusDraft, false, false), true},
		{"hidden_member", member, mk(models.StatusHidden, false, false), false},
		{"hidden_staff", mod, mk(models.StatusHidden, false, false), true},
		{"private_expert_request_expert", expert, mk(models.StatusPublished, true, true), true},
		{"private_expert_request_member", member, mk(models.StatusPublished, true, true), false},
		{"private_plain_expert", expert, mk(models.StatusPublished, true, false), false},
		{"private_plain_author", author, mk(models.StatusPublished, true, false), true},
		{"private_plain_staff", mod, mk(models.StatusPublished, true, false), true},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, canViewQuestion(tc.actor, tc.q), tc.name)
	}
}

func TestQuestionByID_AnonymousOnPrivate(t *testing.T) {
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

	_, err := svc.QuestionByID(context.Background(), models.Actor{}, q.ID)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestQuestionByID_MarksNotificationsRead(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	viewer := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().MarkQuestionNotificationsRead(gomock.Any(), viewer.ID, q.ID).Return(nil)

	got, err := svc.QuestionByID(context.Background(), viewer, q.ID)
	require.NoError(t, err)
	require.Equal(t, q.ID, got.ID)
}

func TestQuestionByID_NotificationFailureIsSoft(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	viewer := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().MarkQuestionNotificationsRead(gomock.Any(), viewer.ID, q.ID).
		Return(storage.ErrNotFound)

	_, err := svc.QuestionByID(context.Background(), viewer, q.ID)
	require.NoError(t, err)
}

func TestListQuestions_FiltersInvisible(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	authorID := uuid.New()
	rows := []models.Question{
		{ID: uuid.New(), AuthorID: authorID, Status: models.StatusPublished},
		{ID: uuid.New(), AuthorID: authorID, Status: models.StatusPublished, IsPrivate: true},
		{ID: uuid.New(), AuthorID: authorID, Status: models.StatusDraft},
	}
	st.EXPECT().ListQuestions(gomock.Any(), gomock.Any()).Return(rows, nil)

	viewer := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	got, err := svc.ListQuestions(context.Background(), viewer, ListQuestionsInput{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rows[0].ID, got[0].ID)
}

func TestSolveQuestion_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New()}
	replyAuthor := uuid.New()
	q := &models.Question{ID: uuid.New(), AuthorID: author.ID, Status: models.StatusPublished}
	replyID := uuid.New()

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SolveQuestion(gomock.Any(), q.ID, replyID).Return(nil)
	// fan-out
	st.EXPECT().ReplyByID(gomock.Any(), replyID).Return(&models.Reply{
		ID:         replyID,
		QuestionID: q.ID,
		AuthorID:   replyAuthor,
	}, nil)
	st.EXPECT().SaveNotification(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UserByID(gomock.Any(), replyAuthor).Return(&models.User{
		ID:    replyAuthor,
		Email: "answerer@example.com",
	}, nil)

	require.NoError(t, svc.SolveQuestion(context.Background(), author, q.ID, replyID))
}

func TestSolveQuestion_NotAuthor(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	stranger := models.Actor{ID: uuid.New()}
	err := svc.SolveQuestion(context.Background(), stranger, q.ID, uuid.New())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSolveQuestion_ForeignReply(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: author.ID, Status: models.StatusPublished}
	replyID := uuid.New()

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SolveQuestion(gomock.Any(), q.ID, replyID).Return(storage.ErrForeignReply)

	err := svc.SolveQuestion(context.Background(), author, q.ID, replyID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSolveQuestion_AlreadySolved(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	author := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: author.ID, Status: models.StatusPublished}

	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SolveQuestion(gomock.Any(), q.ID, gomock.Any()).Return(storage.ErrConflict)

	err := svc.SolveQuestion(context.Background(), author, q.ID, uuid.New())
	require.ErrorIs(t, err, ErrConflict)
}

func TestClaimQuestion_SecondClaimerLoses(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	expert := models.Actor{ID: uuid.New(), Role: models.RoleExpert}
	qid := uuid.New()

	st.EXPECT().ClaimQuestion(gomock.Any(), qid, expert.ID, gomock.Any()).
		Return(storage.ErrConflict)

	err := svc.ClaimQuestion(context.Background(), expert, qid)
	require.ErrorIs(t, err, ErrConflict)
}

func TestClaimQuestion_NotExpert(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	err := svc.ClaimQuestion(context.Background(), member, uuid.New())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestClaimQuestion_NotifiesAuthor(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	expert := models.Actor{ID: uuid.New(), Role: models.RoleExpert}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}

	st.EXPECT().ClaimQuestion(gomock.Any(), q.ID, expert.ID, gomock.Any()).Return(nil)
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			require.Equal(t, models.NotificationClaim, n.Kind)
			require.Equal(t, q.AuthorID, n.UserID)
			require.Equal(t, expert.ID, n.ActorID)
			return nil
		})

	require.NoError(t, svc.ClaimQuestion(context.Background(), expert, q.ID))
}

func TestUnclaimQuestion_NotClaimer(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	expert := models.Actor{ID: uuid.New(), Role: models.RoleExpert}
	qid := uuid.New()

	st.EXPECT().UnclaimQuestion(gomock.Any(), qid, expert.ID).Return(storage.ErrConflict)

	err := svc.UnclaimQuestion(context.Background(), expert, qid)
	require.ErrorIs(t, err, ErrConflict)
}

func TestHideQuestion_RequiresStaff(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	err := svc.HideQuestion(context.Background(), member, uuid.New())
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestHideQuestion_Staff(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	mod := models.Actor{ID: uuid.New(), Role: models.RoleModerator}
	qid := uuid.New()

	st.EXPECT().SetQuestionStatus(gomock.Any(), qid, models.StatusHidden).Return(nil)

	require.NoError(t, svc.HideQuestion(context.Background(), mod, qid))
}

func TestDeleteQuestion_OwnerOrStaff(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New()}
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	stranger := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	err := svc.DeleteQuestion(context.Background(), stranger, q.ID)
	require.ErrorIs(t, err, ErrPermissionDenied)
}
