package usecase_test

import (
	"context"
	"errors"
	"testing"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/internal/usecase"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveRole(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())
	ctx := context.Background()

	users.On("GetByPrincipal", mock.Anything, domain.Principal("admin1")).Return(userWithRole("admin1", domain.RoleAdmin), nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("stranger")).Return(nil, nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("weird")).Return(userWithRole("weird", "superuser"), nil)

	role, err := uc.ResolveRole(ctx, "admin1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	role, err = uc.ResolveRole(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGuest, role, "unknown principal resolves to guest")

	role, err = uc.ResolveRole(ctx, "weird")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGuest, role)
}

func TestAuthorize(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())
	ctx := context.Background()

	users.On("GetByPrincipal", mock.Anything, domain.Principal("admin1")).Return(userWithRole("admin1", domain.RoleAdmin), nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("user1")).Return(userWithRole("user1", domain.RoleUser), nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("broken")).Return(nil, errors.New("connection refused"))

	t.Run("admin is allowed", func(t *testing.T) {
		assert.NoError(t, uc.Authorize(ctx, "admin1", domain.RoleAdmin))
	})

	t.Run("user is denied admin surfaces", func(t *testing.T) {
		err := uc.Authorize(ctx, "user1", domain.RoleAdmin)
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	})

	t.Run("user satisfies user", func(t *testing.T) {
		assert.NoError(t, uc.Authorize(ctx, "user1", domain.RoleUser))
	})

	t.Run("role store failure denies", func(t *testing.T) {
		err := uc.Authorize(ctx, "broken", domain.RoleAdmin)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
		assert.NotContains(t, err.Error(), "connection refused")
	})

	t.Run("empty principal is unauthenticated", func(t *testing.T) {
		err := uc.Authorize(ctx, "", domain.RoleGuest)
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
	})
}

func TestAuthorizeResolvesOnEveryCall(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())
	ctx := sessionCtx("p1")

	users.On("GetByPrincipal", mock.Anything, domain.Principal("p1")).Return(userWithRole("p1", domain.RoleAdmin), nil).Once()
	users.On("GetByPrincipal", mock.Anything, domain.Principal("p1")).Return(userWithRole("p1", domain.RoleUser), nil).Once()

	assert.NoError(t, uc.AuthorizeCaller(ctx, domain.RoleAdmin))
	assert.Error(t, uc.AuthorizeCaller(ctx, domain.RoleAdmin), "revoked admin must be denied immediately")
	users.AssertNumberOfCalls(t, "GetByPrincipal", 2)
}

func TestAuthorizeCallerWithoutSession(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())

	err := uc.AuthorizeCaller(context.Background(), domain.RoleAdmin)
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	s := domain.NewSession()
	require.NoError(t, s.BeginAuthentication())
	err = uc.AuthorizeCaller(domain.WithSession(context.Background(), s), domain.RoleAdmin)
	assert.Error(t, err, "a session still authenticating has no principal")
	users.AssertNotCalled(t, "GetByPrincipal", mock.Anything, mock.Anything)
}

func TestIsCallerAdminFailsClosed(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())

	users.On("GetByPrincipal", mock.Anything, domain.Principal("p1")).Return(nil, errors.New("timeout"))
	assert.False(t, uc.IsCallerAdmin(sessionCtx("p1")))
	assert.False(t, uc.IsCallerAdmin(context.Background()))
}

func TestCallerRole(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())

	users.On("GetByPrincipal", mock.Anything, domain.Principal("u")).Return(userWithRole("u", domain.RoleUser), nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("down")).Return(nil, errors.New("down"))

	role, err := uc.CallerRole(sessionCtx("u"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, role)

	_, err = uc.CallerRole(sessionCtx("down"))
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}

func TestAssignRole(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())

	users.On("GetByPrincipal", mock.Anything, domain.Principal("admin1")).Return(userWithRole("admin1", domain.RoleAdmin), nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("user1")).Return(userWithRole("user1", domain.RoleUser), nil)
	users.On("UpsertRole", mock.Anything, domain.Principal("user2"), domain.RoleAdmin).Return(nil)

	t.Run("admin grants a role", func(t *testing.T) {
		require.NoError(t, uc.AssignRole(sessionCtx("admin1"), "user2", domain.RoleAdmin))
		users.AssertCalled(t, "UpsertRole", mock.Anything, domain.Principal("user2"), domain.RoleAdmin)
	})

	t.Run("non-admin is denied and nothing is written", func(t *testing.T) {
		err := uc.AssignRole(sessionCtx("user1"), "user1", domain.RoleAdmin)
		assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
		users.AssertNotCalled(t, "UpsertRole", mock.Anything, domain.Principal("user1"), mock.Anything)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		err := uc.AssignRole(sessionCtx("admin1"), "user2", "root")
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}

func TestProfiles(t *testing.T) {
	users := new(MockUserRepo)
	uc := usecase.NewAccessUsecase(users, validation.New())

	users.On("GetByPrincipal", mock.Anything, domain.Principal("p1")).Return(&domain.User{Principal: "p1", Role: domain.RoleUser, DisplayName: "Pat"}, nil)
	users.On("GetByPrincipal", mock.Anything, domain.Principal("p2")).Return(userWithRole("p2", domain.RoleUser), nil)
	users.On("SaveProfile", mock.Anything, domain.Principal("p2"), "p2@example.com", domain.UserProfile{Name: "Sam"}).Return(nil)

	profile, err := uc.GetCallerProfile(sessionCtx("p1"))
	require.NoError(t, err)
	assert.Equal(t, "Pat", profile.Name)

	_, err = uc.GetCallerProfile(sessionCtx("p2"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	require.NoError(t, uc.SaveCallerProfile(sessionCtx("p2"), &domain.UserProfile{Name: "  Sam "}))

	err = uc.SaveCallerProfile(sessionCtx("p2"), &domain.UserProfile{Name: ""})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = uc.SaveCallerProfile(context.Background(), &domain.UserProfile{Name: "Sam"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	_, err = uc.GetUserProfile(sessionCtx("p2"), "p1")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "non-admin cannot read other profiles")
}
