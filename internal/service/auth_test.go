package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/currencyguard-server/internal/apierror"
	servermocks "github.com/dtroode/currencyguard-server/internal/mocks"
	"github.com/dtroode/currencyguard-server/internal/model"
	"github.com/dtroode/currencyguard-server/internal/password"
	"github.com/dtroode/currencyguard-server/internal/testutil"
	"github.com/dtroode/currencyguard-server/internal/token"
)

func newTestAuth(t *testing.T, userStore model.UserStore) *Auth {
	t.Helper()
	log := testutil.MakeNoopLogger()
	return NewAuth(
		userStore,
		password.NewHasher(bcrypt.MinCost),
		NewTokenService(token.NewJWT("secret", time.Hour), log),
		log,
	)
}

func requireAPIError(t *testing.T, err error, status int) *apierror.APIError {
	t.Helper()
	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected APIError, got %v", err)
	require.Equal(t, status, apiErr.HTTPStatus)
	return apiErr
}

func TestAuth_Register_NewUser(t *testing.T) {
	ctx := context.Background()
	userStore := servermocks.NewUserStore(t)

	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, model.ErrNotFound).Once()
	userStore.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return u.FullName == "Ada Lovelace" &&
			u.Email == "a@b.co" &&
			u.ID != uuid.Nil &&
			bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("secret123")) == nil
	})).Return(func(_ context.Context, u model.User) model.User { return u }, nil).Once()

	a := newTestAuth(t, userStore)

	id, err := a.Register(ctx, model.RegisterParams{FullName: "  Ada Lovelace ", Email: " a@b.co", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestAuth_Register_ExistingUser(t *testing.T) {
	ctx := context.Background()
	userStore := servermocks.NewUserStore(t)

	userStore.On("GetByEmail", mock.Anything, "existing@user.com").Return(model.User{ID: uuid.New()}, nil).Once()

	a := newTestAuth(t, userStore)

	_, err := a.Register(ctx, model.RegisterParams{FullName: "Existing", Email: "existing@user.com", Password: "secret123"})
	apiErr := requireAPIError(t, err, http.StatusConflict)
	assert.Equal(t, apierror.CodeEmailTaken, apiErr.Code)
	userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_Register_ExistingUserWinsOverValidation(t *testing.T) {
	tests := []struct {
		name   string
		params model.RegisterParams
	}{
		{name: "short password", params: model.RegisterParams{FullName: "X", Email: "existing@user.com", Password: "abc"}},
		{name: "missing password", params: model.RegisterParams{FullName: "X", Email: "existing@user.com"}},
		{name: "missing name", params: model.RegisterParams{Email: " existing@user.com ", Password: "secret123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := servermocks.NewUserStore(t)
			userStore.On("GetByEmail", mock.Anything, "existing@user.com").Return(model.User{ID: uuid.New()}, nil).Once()

			a := newTestAuth(t, userStore)

			_, err := a.Register(context.Background(), tt.params)
			apiErr := requireAPIError(t, err, http.StatusConflict)
			assert.Equal(t, apierror.CodeEmailTaken, apiErr.Code)
			userStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuth_Register_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	userStore := servermocks.NewUserStore(t)

	userStore.On("GetByEmail", mock.Anything, "race@user.com").Return(model.User{}, model.ErrNotFound).Once()
	userStore.On("Create", mock.Anything, mock.Anything).Return(model.User{}, model.ErrEmailTaken).Once()

	a := newTestAuth(t, userStore)

	_, err := a.Register(ctx, model.RegisterParams{FullName: "Race", Email: "race@user.com", Password: "secret123"})
	requireAPIError(t, err, http.StatusConflict)
}

func TestAuth_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params model.RegisterParams
	}{
		{name: "missing name", params: model.RegisterParams{Email: "a@b.co", Password: "secret123"}},
		{name: "blank name", params: model.RegisterParams{FullName: "   ", Email: "a@b.co", Password: "secret123"}},
		{name: "missing email", params: model.RegisterParams{FullName: "A", Password: "secret123"}},
		{name: "missing password", params: model.RegisterParams{FullName: "A", Email: "a@b.co"}},
		{name: "malformed email", params: model.RegisterParams{FullName: "A", Email: "not-an-email", Password: "secret123"}},
		{name: "display name email", params: model.RegisterParams{FullName: "A", Email: "A <a@b.co>", Password: "secret123"}},
		{name: "short password", params: model.RegisterParams{FullName: "A", Email: "a@b.co", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := servermocks.NewUserStore(t)
			userStore.On("GetByEmail", mock.Anything, mock.Anything).Return(model.User{}, model.ErrNotFound).Maybe()
			a := newTestAuth(t, userStore)

			_, err := a.Register(context.Background(), tt.params)
			apiErr := requireAPIError(t, err, http.StatusBadRequest)
			assert.Equal(t, apierror.CodeValidation, apiErr.Code)
		})
	}
}

func TestAuth_Register_StoreError(t *testing.T) {
	userStore := servermocks.NewUserStore(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, assert.AnError).Once()

	a := newTestAuth(t, userStore)

	_, err := a.Register(context.Background(), model.RegisterParams{FullName: "A", Email: "a@b.co", Password: "secret123"})
	require.ErrorIs(t, err, assert.AnError)
	_, isAPI := apierror.As(err)
	assert.False(t, isAPI)
}

func TestAuth_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	userStore := servermocks.NewUserStore(t)

	var stored model.User
	userStore.On("GetByEmail", mock.Anything, "fresh@user.com").Return(model.User{}, model.ErrNotFound).Once()
	userStore.On("Create", mock.Anything, mock.Anything).Return(func(_ context.Context, u model.User) model.User {
		stored = u
		return u
	}, nil).Once()

	a := newTestAuth(t, userStore)

	id, err := a.Register(ctx, model.RegisterParams{FullName: "Fresh", Email: "fresh@user.com", Password: "secret123"})
	require.NoError(t, err)

	userStore.On("GetByEmail", mock.Anything, "fresh@user.com").Return(func(context.Context, string) model.User { return stored }, nil).Once()

	session, err := a.Login(ctx, "fresh@user.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, id, session.User.ID)
	assert.NotEmpty(t, session.Token)

	got, err := a.tokenService.GetUserID(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestAuth_Login_UniformFailure(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userStore := servermocks.NewUserStore(t)
	userStore.On("GetByEmail", mock.Anything, "known@user.com").Return(model.User{ID: uuid.New(), Email: "known@user.com", PasswordHash: hash}, nil).Once()
	userStore.On("GetByEmail", mock.Anything, "unknown@user.com").Return(model.User{}, model.ErrNotFound).Once()

	a := newTestAuth(t, userStore)

	_, wrongPassErr := a.Login(ctx, "known@user.com", "wrong-password")
	_, unknownErr := a.Login(ctx, "unknown@user.com", "secret123")

	first := requireAPIError(t, wrongPassErr, http.StatusUnauthorized)
	second := requireAPIError(t, unknownErr, http.StatusUnauthorized)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.Code, second.Code)
}

func TestAuth_Login_MissingFields(t *testing.T) {
	a := newTestAuth(t, servermocks.NewUserStore(t))

	_, err := a.Login(context.Background(), "", "secret123")
	requireAPIError(t, err, http.StatusBadRequest)
}

func TestAuth_Login_StoreError(t *testing.T) {
	userStore := servermocks.NewUserStore(t)
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(model.User{}, assert.AnError).Once()

	a := newTestAuth(t, userStore)

	_, err := a.Login(context.Background(), "a@b.co", "secret123")
	require.ErrorIs(t, err, assert.AnError)
}

func TestAuth_VerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	a := newTestAuth(t, servermocks.NewUserStore(t))
	user := model.User{ID: uuid.New(), PasswordHash: hash}

	assert.True(t, a.VerifyPassword(user, "secret123"))
	assert.False(t, a.VerifyPassword(user, "secret124"))
	assert.False(t, a.VerifyPassword(model.User{PasswordHash: []byte("garbage")}, "secret123"))
}

func TestAuth_FindByEmail(t *testing.T) {
	userStore := servermocks.NewUserStore(t)
	user := model.User{ID: uuid.New(), Email: "a@b.co"}
	userStore.On("GetByEmail", mock.Anything, "a@b.co").Return(user, nil).Once()
	userStore.On("GetByEmail", mock.Anything, "none@b.co").Return(model.User{}, model.ErrNotFound).Once()

	a := newTestAuth(t, userStore)

	got, err := a.FindByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, user, got)

	_, err = a.FindByEmail(context.Background(), "none@b.co")
	require.ErrorIs(t, err, model.ErrNotFound)
}
