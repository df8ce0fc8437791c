package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"digo-dashboard/internal/core/auth"
	"digo-dashboard/internal/features/users/adapters"
	"digo-dashboard/internal/features/users/domain"
	"digo-dashboard/internal/features/users/ports"
)

func newTestService() *UserServiceImpl {
	return NewUserService(
		adapters.NewMemoryUserRepository(),
		adapters.NewMemoryCompanyRepository(),
		adapters.NewMemoryAreaRepository(
			domain.Area{ID: 1, Name: "Logística", CompanyID: 1},
			domain.Area{ID: 2, Name: "Ventas", CompanyID: 2},
		),
		auth.NewTokenIssuer("test-secret", time.Hour),
		zap.NewNop(),
	)
}

func TestUserService_CreateAndLogin(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.CreateUser(ctx, ports.CreateUserInput{
		Name: "Ana", Email: "ana@digo.mx", Password: "secreto123", Role: domain.RoleManager,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", created.PasswordHash)

	t.Run("Success", func(t *testing.T) {
		result, err := service.Login(ctx, "ana@digo.mx", "secreto123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "Ana", result.User.Name)
		assert.NotNil(t, result.User.LastLogin)

		issuer := auth.NewTokenIssuer("test-secret", time.Hour)
		claims, err := issuer.Verify(result.Token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, claims.UserID)
		assert.Equal(t, domain.RoleManager, claims.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := service.Login(ctx, "ana@digo.mx", "incorrecta")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := service.Login(ctx, "nadie@digo.mx", "x")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestUserService_CreateUser(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	t.Run("RoleDefaultsToViewer", func(t *testing.T) {
		user, err := service.CreateUser(ctx, ports.CreateUserInput{
			Name: "Luis", Email: "luis@digo.mx", Password: "pw",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, user.Role)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		_, err := service.CreateUser(ctx, ports.CreateUserInput{
			Name: "Mal", Email: "mal@digo.mx", Password: "pw", Role: "root",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := service.CreateUser(ctx, ports.CreateUserInput{
			Name: "Otro", Email: "luis@digo.mx", Password: "pw",
		})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, ports.CreateUserInput{
		Name: "Ana", Email: "ana@digo.mx", Password: "original",
	})
	require.NoError(t, err)

	t.Run("PasswordRehash", func(t *testing.T) {
		newPassword := "renovada"
		_, err := service.UpdateUser(ctx, user.ID, ports.UpdateUserInput{Password: &newPassword})
		require.NoError(t, err)

		_, err = service.Login(ctx, "ana@digo.mx", "renovada")
		assert.NoError(t, err)
		_, err = service.Login(ctx, "ana@digo.mx", "original")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, 999, ports.UpdateUserInput{})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserService_ReferenceData(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	companies, err := service.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Dura International", companies[0].Name)
	assert.Equal(t, "Grupo Orsega", companies[1].Name)

	companyID := 2
	areas, err := service.ListAreas(ctx, &companyID)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "Ventas", areas[0].Name)
}
