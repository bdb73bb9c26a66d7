package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingRepo struct{ Repository }

func (failingRepo) GetByRefresh(context.Context, string) (*Session, error) {
	return nil, errors.New("backend down")
}

func TestCreateAndValidateSession(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	r, err := svc.CreateSession(ctx, 1, "admin", time.Hour)
	require.NoError(t, err)
	require.Len(t, r, 64)

	sess, err := svc.ValidateRefresh(ctx, r)
	require.NoError(t, err)
	require.Equal(t, 1, sess.UserID)
	require.Equal(t, "admin", sess.Username)

	require.NoError(t, svc.DeleteRefresh(ctx, r))
	_, err = svc.ValidateRefresh(ctx, r)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestValidateRefresh_Expired(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	r, err := svc.CreateSession(ctx, 1, "admin", time.Minute)
	require.NoError(t, err)

	later := time.Now().Add(2 * time.Minute)
	svc.now = func() time.Time { return later }
	repo.now = svc.now

	_, err = svc.ValidateRefresh(ctx, r)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestValidateRefresh_EmptyAndUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	_, err := svc.ValidateRefresh(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidRefresh)
	_, err = svc.ValidateRefresh(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestValidateRefresh_RepositoryError(t *testing.T) {
	svc := NewService(failingRepo{})
	_, err := svc.ValidateRefresh(context.Background(), "x")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidRefresh)
}

func TestRotate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	old, err := svc.CreateSession(ctx, 3, "ops", time.Hour)
	require.NoError(t, err)

	sess, next, err := svc.Rotate(ctx, old, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 3, sess.UserID)
	require.NotEqual(t, old, next)

	_, err = svc.ValidateRefresh(ctx, old)
	require.ErrorIs(t, err, ErrInvalidRefresh)
	got, err := svc.ValidateRefresh(ctx, next)
	require.NoError(t, err)
	require.Equal(t, "ops", got.Username)

	_, _, err = svc.Rotate(ctx, old, time.Hour)
	require.ErrorIs(t, err, ErrInvalidRefresh)
}
