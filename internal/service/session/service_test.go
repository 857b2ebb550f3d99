package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/solar-admin/internal/model"
	"github.com/jwalitptl/solar-admin/internal/storage"
	"github.com/jwalitptl/solar-admin/pkg/auth"
	apperrors "github.com/jwalitptl/solar-admin/pkg/errors"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Login(ctx context.Context, req *model.LoginRequest) (*model.BackendSession, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*model.BackendSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthRepo) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func newService(t *testing.T) (*Service, *mockAuthRepo, storage.Store) {
	t.Helper()
	repo := new(mockAuthRepo)
	store := storage.NewMemory(time.Minute)
	jwtSvc, err := auth.NewJWTService("test-secret-0123456789", "solar-admin")
	require.NoError(t, err)
	return NewService(repo, store, jwtSvc, time.Hour, nil, nil, nil), repo, store
}

func TestService_LoginAuthenticateLogout(t *testing.T) {
	svc, repo, store := newService(t)
	ctx := context.Background()

	req := &model.LoginRequest{Email: "ops@example.com", Password: "pw"}
	repo.On("Login", mock.Anything, req).Return(&model.BackendSession{
		Token: "backend-token",
		Admin: model.AdminUser{Base: model.Base{ID: "admin-1"}, Email: "ops@example.com"},
	}, nil).Once()

	res, err := svc.Login(ctx, req, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "admin-1", res.Admin.ID)

	sess, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", sess.BackendToken)

	_, err = store.Get(ctx, Key(sess.ID))
	require.NoError(t, err)

	repo.On("Logout", mock.Anything, "backend-token").Return(errors.New("backend down")).Once()
	require.NoError(t, svc.Logout(ctx, sess.ID, "127.0.0.1"))

	_, err = store.Get(ctx, Key(sess.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	// Logging out twice is harmless.
	assert.NoError(t, svc.Logout(ctx, sess.ID, ""))
	repo.AssertExpectations(t)
}

func TestService_LoginHonoursBackendExpiry(t *testing.T) {
	svc, repo, _ := newService(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	exp := fixed.Add(10 * time.Minute)
	repo.On("Login", mock.Anything, mock.Anything).Return(&model.BackendSession{Token: "t", ExpiresAt: &exp}, nil)

	res, err := svc.Login(context.Background(), &model.LoginRequest{Email: "a@b.co", Password: "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, exp, res.ExpiresAt)
}

func TestService_LoginRejectsExpiredBackendSession(t *testing.T) {
	svc, repo, _ := newService(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	for _, exp := range []time.Time{fixed.Add(-time.Minute), fixed} {
		exp := exp
		repo.On("Login", mock.Anything, mock.Anything).Return(&model.BackendSession{Token: "t", ExpiresAt: &exp}, nil).Once()

		res, err := svc.Login(context.Background(), &model.LoginRequest{Email: "a@b.co", Password: "x"}, "")
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	}
	repo.AssertExpectations(t)
}

func TestService_LoginFailurePassesThrough(t *testing.T) {
	svc, repo, _ := newService(t)
	backendErr := apperrors.Unauthorized(errors.New("Invalid credentials"))
	repo.On("Login", mock.Anything, mock.Anything).Return(nil, backendErr)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Email: "a@b.co", Password: "x"}, "")
	assert.Equal(t, backendErr, err)
}

func TestService_AuthenticateBadToken(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}
