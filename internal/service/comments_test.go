package service

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
	"github.com/the-dramaturgy/dramaturgy-service/internal/storage"
)

func TestCreateComment_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}
	r := &models.Reply{ID: uuid.New(), QuestionID: q.ID, AuthorID: uuid.New()}

	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveComment(gomock.Any(), gomock.Any()).Return(nil)

	c, err := svc.CreateComment(context.Background(), actor, CreateCommentInput{
		ReplyID: r.ID,
		Content: "Хорошее замечание.",
	})
	require.NoError(t, err)
	require.Equal(t, r.ID, c.ReplyID)
	require.Nil(t, c.ParentCommentID)
}

func TestCreateComment_DepthExceeded(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}
	r := &models.Reply{ID: uuid.New(), QuestionID: q.ID, AuthorID: uuid.New()}
	parent := uuid.New()

	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveComment(gomock.Any(), gomock.Any()).Return(storage.ErrMaxDepthExceeded)

	_, err := svc.CreateComment(context.Background(), actor, CreateCommentInput{
		ReplyID:         r.ID,
		ParentCommentID: &parent,
		Content:         "Ответ на ответ на комментарий.",
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateComment_ParentGone(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}
	r := &models.Reply{ID: uuid.New(), QuestionID: q.ID, AuthorID: uuid.New()}
	parent := uuid.New()

	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)
	st.EXPECT().SaveComment(gomock.Any(), gomock.Any()).Return(storage.ErrParentNotFound)

	_, err := svc.CreateComment(context.Background(), actor, CreateCommentInput{
		ReplyID:         r.ID,
		ParentCommentID: &parent,
		Content:         "Отвечаю удалённому.",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateComment_TooLong(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New()}
	_, err := svc.CreateComment(context.Background(), actor, CreateCommentInput{
		ReplyID: uuid.New(),
		Content: strings.Repeat("ы", maxCommentLen+1),
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateComment_OnHiddenQuestion(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actor := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	q := &models.Question{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusHidden}
	r := &models.Reply{ID: uuid.New(), QuestionID: q.ID, AuthorID: uuid.New()}

	st.EXPECT().ReplyByID(gomock.Any(), r.ID).Return(r, nil)
	st.EXPECT().QuestionByID(gomock.Any(), q.ID).Return(q, nil)

	_, err := svc.CreateComment(context.Background(), actor, CreateCommentInput{
		ReplyID: r.ID,
		Content: "Комментарий в пустоту.",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateComment_Stranger(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	c := &models.Comment{ID: uuid.New(), ReplyID: uuid.New(), AuthorID: uuid.New()}
	st.EXPECT().CommentByID(gomock.Any(), c.ID).Return(c, nil)

	stranger := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	_, err := svc.UpdateComment(context.Background(), stranger, c.ID, "правка чужого")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDeleteComment_Staff(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	c := &models.Comment{ID: uuid.New(), ReplyID: uuid.New(), AuthorID: uuid.New()}
	st.EXPECT().CommentByID(gomock.Any(), c.ID).Return(c, nil)
	st.EXPECT().DeleteComment(gomock.Any(), c.ID).Return(nil)

	mod := models.Actor{ID: uuid.New(), Role: models.RoleModerator}
	require.NoError(t, svc.DeleteComment(context.Background(), mod, c.ID))
}
