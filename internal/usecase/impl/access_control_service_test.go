package impl

import (
	"context"
	"testing"

	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccessService(store *fakeStore) usecase.AccessControlUsecase {
	return NewAccessControlService(AccessControlServiceParams{
		TxManager: newFakeTxManager(store),
		Logger:    testLogger(),
	})
}

func seedUser(store *fakeStore) uuid.UUID {
	userID := uuid.New()
	store.usersByID[userID] = &entity.User{ID: userID, Email: userID.String() + "@example.com"}

	return userID
}

func TestAccessControlService_CreateRole_DuplicateName(t *testing.T) {
	service := newTestAccessService(newFakeStore())
	ctx := context.Background()

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)

	_, err = service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestAccessControlService_CreateRole_RequiresName(t *testing.T) {
	service := newTestAccessService(newFakeStore())

	_, err := service.CreateRole(context.Background(), usecase.CreateRoleInput{})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestAccessControlService_AssignRole(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)
	adminID := seedUser(store)

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)

	require.NoError(t, service.AssignRole(ctx, userID, "editor", &adminID))

	has, err := service.HasRole(ctx, userID, "editor")
	require.NoError(t, err)
	assert.True(t, has)

	// The audit trail records who made the assignment.
	role := store.rolesByName["editor"]
	link := store.userRoles[userID][role.ID]
	require.NotNil(t, link)
	require.NotNil(t, link.AssignedBy)
	assert.Equal(t, adminID, *link.AssignedBy)

	// Double assignment is a conflict.
	err = service.AssignRole(ctx, userID, "editor", &adminID)
	require.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestAccessControlService_AssignRole_MissingTargets(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)

	err := service.AssignRole(ctx, userID, "ghost", nil)
	require.ErrorIs(t, err, domainerrors.ErrRoleNotFound)

	_, err = service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)

	err = service.AssignRole(ctx, uuid.New(), "editor", nil)
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccessControlService_RemoveRole(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)
	require.NoError(t, service.AssignRole(ctx, userID, "editor", nil))

	require.NoError(t, service.RemoveRole(ctx, userID, "editor"))

	has, err := service.HasRole(ctx, userID, "editor")
	require.NoError(t, err)
	assert.False(t, has)

	// Removing a role the user does not hold is not found.
	err = service.RemoveRole(ctx, userID, "editor")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccessControlService_PermissionResolution(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)
	_, err = service.CreatePermission(ctx, usecase.CreatePermissionInput{
		Name:     "content:write",
		Resource: "content",
		Action:   "write",
	})
	require.NoError(t, err)

	// Not granted before the links exist.
	granted, err := service.HasPermission(ctx, userID, "content:write")
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, service.AssignPermission(ctx, "editor", "content:write"))
	require.NoError(t, service.AssignRole(ctx, userID, "editor", nil))

	// Effective on the next resolution after the grant.
	granted, err = service.HasPermission(ctx, userID, "content:write")
	require.NoError(t, err)
	assert.True(t, granted)

	names, err := service.RolePermissions(ctx, "editor")
	require.NoError(t, err)
	assert.Equal(t, []string{"content:write"}, names)
}

func TestAccessControlService_HasPermission_InactiveRole(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "editor"})
	require.NoError(t, err)
	_, err = service.CreatePermission(ctx, usecase.CreatePermissionInput{Name: "content:write", Resource: "content", Action: "write"})
	require.NoError(t, err)
	require.NoError(t, service.AssignPermission(ctx, "editor", "content:write"))
	require.NoError(t, service.AssignRole(ctx, userID, "editor", nil))

	store.rolesByName["editor"].IsActive = false

	granted, err := service.HasPermission(ctx, userID, "content:write")
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestAccessControlService_EnsureDefaultRole_LazyBootstrap(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	userID := seedUser(store)

	// No role row exists yet; the first call creates it.
	require.NoError(t, service.EnsureDefaultRole(ctx, userID))

	roles, err := service.UserRoles(ctx, userID)
	require.NoError(t, err)
	assert.True(t, roles.Contains(entity.DefaultRoleName))

	// Idempotent for an account that already holds it.
	require.NoError(t, service.EnsureDefaultRole(ctx, userID))

	roles, err = service.UserRoles(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestAccessControlService_CanManageAccess(t *testing.T) {
	store := newFakeStore()
	service := newTestAccessService(store)
	ctx := context.Background()
	managerID := seedUser(store)
	adminID := seedUser(store)
	plainID := seedUser(store)

	_, err := service.CreateRole(ctx, usecase.CreateRoleInput{Name: "ops"})
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, usecase.CreateRoleInput{Name: entity.AdminRoleName})
	require.NoError(t, err)
	_, err = service.CreatePermission(ctx, usecase.CreatePermissionInput{
		Name:     entity.ManageAccessPermission,
		Resource: "rbac",
		Action:   "manage",
	})
	require.NoError(t, err)

	require.NoError(t, service.AssignPermission(ctx, "ops", entity.ManageAccessPermission))
	require.NoError(t, service.AssignRole(ctx, managerID, "ops", nil))
	require.NoError(t, service.AssignRole(ctx, adminID, entity.AdminRoleName, nil))

	// Through the permission.
	granted, err := service.CanManageAccess(ctx, managerID)
	require.NoError(t, err)
	assert.True(t, granted)

	// Through the admin role fallback, without the permission row linked.
	granted, err = service.CanManageAccess(ctx, adminID)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = service.CanManageAccess(ctx, plainID)
	require.NoError(t, err)
	assert.False(t, granted)
}
