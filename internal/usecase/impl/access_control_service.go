package impl

import (
	"context"
	"log/slog"

	deliverycontext "folio/internal/delivery/context"
	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accessControlService implements the AccessControlUsecase interface.
// Role and permission grants are resolved against current rows on every
// call; a grant is effective on the next resolution after commit.
type accessControlService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// AccessControlServiceParams holds dependencies for accessControlService, injected by Fx.
type AccessControlServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewAccessControlService is the constructor for accessControlService.
func NewAccessControlService(params AccessControlServiceParams) usecase.AccessControlUsecase {
	return &accessControlService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accessControlService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateRole registers a new role with a unique name.
func (srv *accessControlService) CreateRole(ctx context.Context, input usecase.CreateRoleInput) (*entity.Role, error) {
	if input.Name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("role name is required")
	}

	role := &entity.Role{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccessRepo().CreateRole(ctx, role); err != nil {
			if errors.Is(err, repository.ErrDuplicateName) {
				return domainerrors.ErrConflict.WrapMessage("role name already exists")
			}

			return errors.Wrap(err, "failed to create role")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create role", slog.Any("error", err), slog.String("name", input.Name))

		return nil, err
	}

	srv.log(ctx).Info("Created role", slog.String("name", role.Name), slog.Any("role_id", role.ID))

	return role, nil
}

// ListRoles returns all roles.
func (srv *accessControlService) ListRoles(ctx context.Context) ([]*entity.Role, error) {
	var roles []*entity.Role
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var listErr error
		roles, listErr = repoFactory.AccessRepo().ListRoles(ctx)

		return listErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}

	return roles, nil
}

// CreatePermission registers a new permission with a unique name.
func (srv *accessControlService) CreatePermission(ctx context.Context, input usecase.CreatePermissionInput) (*entity.Permission, error) {
	if input.Name == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("permission name is required")
	}

	permission := &entity.Permission{
		Name:        input.Name,
		Description: input.Description,
		Resource:    input.Resource,
		Action:      input.Action,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccessRepo().CreatePermission(ctx, permission); err != nil {
			if errors.Is(err, repository.ErrDuplicateName) {
				return domainerrors.ErrConflict.WrapMessage("permission name already exists")
			}

			return errors.Wrap(err, "failed to create permission")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create permission", slog.Any("error", err), slog.String("name", input.Name))

		return nil, err
	}

	srv.log(ctx).Info("Created permission", slog.String("name", permission.Name), slog.Any("permission_id", permission.ID))

	return permission, nil
}

// AssignRole links a role to a user by role name.
func (srv *accessControlService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string, assignedBy *uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		accessRepo := repoFactory.AccessRepo()

		if _, err := userRepo.FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		role, err := accessRepo.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		link := &entity.UserRole{
			UserID:     userID,
			RoleID:     role.ID,
			AssignedBy: assignedBy,
		}
		if err := accessRepo.CreateUserRole(ctx, link); err != nil {
			if errors.Is(err, repository.ErrDuplicateLink) {
				return domainerrors.ErrConflict.WrapMessage("user already has this role")
			}

			return errors.Wrap(err, "failed to assign role")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to assign role",
			slog.Any("error", err), slog.Any("user_id", userID), slog.String("role", roleName))

		return err
	}

	srv.log(ctx).Info("Assigned role", slog.Any("user_id", userID), slog.String("role", roleName))

	return nil
}

// RemoveRole unlinks a role from a user by role name.
func (srv *accessControlService) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accessRepo := repoFactory.AccessRepo()

		role, err := accessRepo.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		if err := accessRepo.DeleteUserRole(ctx, userID, role.ID); err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("user does not have this role")
			}

			return errors.Wrap(err, "failed to remove role")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to remove role",
			slog.Any("error", err), slog.Any("user_id", userID), slog.String("role", roleName))

		return err
	}

	srv.log(ctx).Info("Removed role", slog.Any("user_id", userID), slog.String("role", roleName))

	return nil
}

// AssignPermission links a permission to a role, both by name.
func (srv *accessControlService) AssignPermission(ctx context.Context, roleName, permissionName string) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accessRepo := repoFactory.AccessRepo()

		role, err := accessRepo.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		permission, err := accessRepo.FindPermissionByName(ctx, permissionName)
		if err != nil {
			if errors.Is(err, repository.ErrPermissionNotFound) {
				return domainerrors.ErrPermissionNotFound
			}

			return errors.Wrap(err, "failed to find permission")
		}

		link := &entity.RolePermission{
			RoleID:       role.ID,
			PermissionID: permission.ID,
		}
		if err := accessRepo.CreateRolePermission(ctx, link); err != nil {
			if errors.Is(err, repository.ErrDuplicateLink) {
				return domainerrors.ErrConflict.WrapMessage("role already has this permission")
			}

			return errors.Wrap(err, "failed to grant permission")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to grant permission",
			slog.Any("error", err), slog.String("role", roleName), slog.String("permission", permissionName))

		return err
	}

	srv.log(ctx).Info("Granted permission", slog.String("role", roleName), slog.String("permission", permissionName))

	return nil
}

// UserRoles returns the names of the roles the user holds.
func (srv *accessControlService) UserRoles(ctx context.Context, userID uuid.UUID) (entity.RoleNames, error) {
	var names entity.RoleNames
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var listErr error
		names, listErr = repoFactory.AccessRepo().ListRoleNamesByUser(ctx, userID)

		return listErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user roles")
	}

	return names, nil
}

// RolePermissions returns the permission names linked to a role.
func (srv *accessControlService) RolePermissions(ctx context.Context, roleName string) ([]string, error) {
	var names []string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accessRepo := repoFactory.AccessRepo()

		role, err := accessRepo.FindRoleByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, repository.ErrRoleNotFound) {
				return domainerrors.ErrRoleNotFound
			}

			return errors.Wrap(err, "failed to find role")
		}

		names, err = accessRepo.ListPermissionNamesByRole(ctx, role.ID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// HasRole reports whether the user holds the named role.
func (srv *accessControlService) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	names, err := srv.UserRoles(ctx, userID)
	if err != nil {
		return false, err
	}

	return names.Contains(roleName), nil
}

// HasPermission reports whether any active role of the user grants the
// named permission.
func (srv *accessControlService) HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	var granted bool
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var checkErr error
		granted, checkErr = repoFactory.AccessRepo().UserHasPermission(ctx, userID, permissionName)

		return checkErr
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to resolve permission")
	}

	return granted, nil
}

// ensureDefaultRole assigns the default role within the caller's
// transaction, creating the role row lazily on first use. Holding the
// role already is not an error.
func ensureDefaultRole(ctx context.Context, accessRepo repository.AccessRepository, userID uuid.UUID) error {
	role, err := accessRepo.FindRoleByName(ctx, entity.DefaultRoleName)
	if errors.Is(err, repository.ErrRoleNotFound) {
		role = &entity.Role{
			Name:        entity.DefaultRoleName,
			Description: "Default role for registered accounts",
			IsActive:    true,
		}
		if createErr := accessRepo.CreateRole(ctx, role); createErr != nil {
			// Lost a bootstrap race; the row exists now.
			if !errors.Is(createErr, repository.ErrDuplicateName) {
				return errors.Wrap(createErr, "failed to bootstrap default role")
			}
			if role, err = accessRepo.FindRoleByName(ctx, entity.DefaultRoleName); err != nil {
				return errors.Wrap(err, "failed to find default role")
			}
		}
	} else if err != nil {
		return errors.Wrap(err, "failed to find default role")
	}

	link := &entity.UserRole{UserID: userID, RoleID: role.ID}
	if err := accessRepo.CreateUserRole(ctx, link); err != nil && !errors.Is(err, repository.ErrDuplicateLink) {
		return errors.Wrap(err, "failed to assign default role")
	}

	return nil
}

// EnsureDefaultRole assigns the default role to the user in its own
// transaction.
func (srv *accessControlService) EnsureDefaultRole(ctx context.Context, userID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return ensureDefaultRole(ctx, repoFactory.AccessRepo(), userID)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to ensure default role", slog.Any("error", err), slog.Any("user_id", userID))

		return err
	}

	return nil
}

// CanManageAccess reports whether the user may administer roles and
// permissions. The admin role grants management even before the manage
// permission row has been provisioned.
func (srv *accessControlService) CanManageAccess(ctx context.Context, userID uuid.UUID) (bool, error) {
	granted, err := srv.HasPermission(ctx, userID, entity.ManageAccessPermission)
	if err != nil {
		return false, err
	}
	if granted {
		return true, nil
	}

	return srv.HasRole(ctx, userID, entity.AdminRoleName)
}
