package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:            uuid.New(),
		Username:      "expert_jane",
		Role:          models.RoleExpert,
		EmailVerified: true,
	}

	signed, exp, err := svc.generateAccessToken(context.Background(), user, time.Now().UTC())
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(testCfg().AccessTokenTTL), exp, 2*time.Second)

	actor, err := svc.ValidateAccessToken(signed)
	require.NoError(t, err)
	require.Equal(t, user.ID, actor.ID)
	require.Equal(t, "expert_jane", actor.Username)
	require.Equal(t, models.RoleExpert, actor.Role)
	require.True(t, actor.EmailVerified)
	require.False(t, actor.IsAnonymous())
}

func TestAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	otherCfg := testCfg()
	otherCfg.JWTSecret = "another-secret"
	other := New(nil, nil, nil, otherCfg, testSMTP())

	signed, _, err := other.generateAccessToken(context.Background(), &models.User{
		ID:       uuid.New(),
		Username: "john",
	}, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessToken_Expired(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Выпуск в прошлом так, чтобы exp оказался за пределами leeway.
	issuedAt := time.Now().UTC().Add(-testCfg().AccessTokenTTL - time.Minute)
	signed, _, err := svc.generateAccessToken(context.Background(), &models.User{
		ID:       uuid.New(),
		Username: "john",
	}, issuedAt)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.ValidateAccessToken(tok)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	t.Parallel()

	require.Equal(t, hashToken("abc"), hashToken("abc"))
	require.NotEqual(t, hashToken("abc"), hashToken("abd"))
}

func TestNewOpaqueToken_Unique(t *testing.T) {
	t.Parallel()

	a, err := newOpaqueToken()
	require.NoError(t, err)
	b, err := newOpaqueToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.GreaterOrEqual(t, len(a), 40)
}
