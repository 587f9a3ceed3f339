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

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "john", want: "john"},
		{in: "John", want: "john"},
		{in: "  JOHN  ", want: "john"},
		{in: "john-doe_99", want: "john-doe_99"},
		{in: "a.b.c", want: "a.b.c"},
		{in: "ab3", want: "ab3"},
		{in: "jo", wantErr: true},                                // короче 3
		{in: "ab", wantErr: true},                                // короче 3
		{in: "", wantErr: true},                                  // пусто
		{in: "0123456789012345678901234567890", wantErr: true},   // длиннее 30
		{in: ".john", wantErr: true},                             // пунктуация на границе
		{in: "john.", wantErr: true},                             // пунктуация на границе
		{in: "-john", wantErr: true},                             // пунктуация на границе
		{in: "john..doe", wantErr: true},                         // двойная пунктуация
		{in: "john._doe", wantErr: true},                         // двойная пунктуация
		{in: "john--doe", wantErr: true},                         // двойная пунктуация
		{in: "john doe", wantErr: true},                          // пробел
		{in: "john@doe", wantErr: true},                          // запрещённый символ
		{in: "жорж", wantErr: true},                              // не ASCII
		{in: "admin", wantErr: true},                             // зарезервировано
		{in: "Moderator", wantErr: true},                         // зарезервировано, регистр
		{in: "root", wantErr: true},                              // зарезервировано
		{in: "support", wantErr: true},                           // зарезервировано
		{in: "api", wantErr: true},                               // зарезервировано
	}

	for _, tc := range tests {
		got, err := ValidateUsername(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidUsername, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestCanViewProfile(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	anon := models.Actor{}
	member := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	owner := models.Actor{ID: ownerID, Role: models.RoleUser}
	mod := models.Actor{ID: uuid.New(), Role: models.RoleModerator}

	mk := func(v models.Visibility) *models.User {
		return &models.User{ID: ownerID, Visibility: v}
	}

	// PUBLIC видят все.
	require.True(t, CanViewProfile(anon, mk(models.VisibilityPublic)))
	require.True(t, CanViewProfile(member, mk(models.VisibilityPublic)))

	// MEMBERS_ONLY — любая аутентифицированная сессия.
	require.False(t, CanViewProfile(anon, mk(models.VisibilityMembersOnly)))
	require.True(t, CanViewProfile(member, mk(models.VisibilityMembersOnly)))

	// PRIVATE — только владелец и staff.
	require.False(t, CanViewProfile(anon, mk(models.VisibilityPrivate)))
	require.False(t, CanViewProfile(member, mk(models.VisibilityPrivate)))
	require.True(t, CanViewProfile(owner, mk(models.VisibilityPrivate)))
	require.True(t, CanViewProfile(mod, mk(models.VisibilityPrivate)))
}

func TestProfileByUsername_PrivateAnonymous(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByUsername(gomock.Any(), "hermit").Return(&models.User{
		ID:         uuid.New(),
		Username:   "hermit",
		Visibility: models.VisibilityPrivate,
	}, nil)

	_, err := svc.ProfileByUsername(context.Background(), models.Actor{}, "hermit")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProfileByUsername_PrivateMember(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByUsername(gomock.Any(), "hermit").Return(&models.User{
		ID:         uuid.New(),
		Username:   "hermit",
		Visibility: models.VisibilityPrivate,
	}, nil)

	viewer := models.Actor{ID: uuid.New(), Role: models.RoleUser}
	_, err := svc.ProfileByUsername(context.Background(), viewer, "hermit")
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateProfile_UsernameTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actorID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), actorID).Return(&models.User{
		ID:       actorID,
		Username: "oldname",
	}, nil)
	st.EXPECT().UsernameTaken(gomock.Any(), "newname", actorID).Return(true, nil)

	newName := "newname"
	_, err := svc.UpdateProfile(context.Background(), models.Actor{ID: actorID}, UpdateProfileInput{
		Username: &newName,
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdateProfile_SameUsernameCaseChange(t *testing.T) {
	t.Parallel()

	// Смена регистра собственного имени не трогает проверку уникальности.
	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actorID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), actorID).Return(&models.User{
		ID:       actorID,
		Username: "john",
	}, nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Return(nil)

	raw := "John"
	got, err := svc.UpdateProfile(context.Background(), models.Actor{ID: actorID}, UpdateProfileInput{
		Username: &raw,
	})
	require.NoError(t, err)
	require.Equal(t, "john", got.Username)
}

func TestUpdateProfile_Visibility(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	actorID := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), actorID).Return(&models.User{
		ID:         actorID,
		Username:   "john",
		Visibility: models.VisibilityPublic,
	}, nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Return(nil)

	v := models.VisibilityMembersOnly
	got, err := svc.UpdateProfile(context.Background(), models.Actor{ID: actorID}, UpdateProfileInput{
		Visibility: &v,
	})
	require.NoError(t, err)
	require.Equal(t, models.VisibilityMembersOnly, got.Visibility)
}

func TestUpdateProfile_Anonymous(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.UpdateProfile(context.Background(), models.Actor{}, UpdateProfileInput{})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProfileByUsername_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByUsername(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)

	_, err := svc.ProfileByUsername(context.Background(), models.Actor{}, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
