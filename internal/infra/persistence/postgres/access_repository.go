package postgres

import (
	"context"

	"folio/internal/domain/entity"
	domainerrors "folio/internal/domain/errors"
	"folio/internal/domain/repository"
	"folio/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accessRepository implements the domain.AccessRepository interface using GORM.
type accessRepository struct {
	db *gorm.DB
}

// NewAccessRepository is the constructor for accessRepository.
func NewAccessRepository(db *gorm.DB) repository.AccessRepository {
	return &accessRepository{db: db}
}

// CreateRole persists a new role.
func (repo *accessRepository) CreateRole(ctx context.Context, role *entity.Role) error {
	roleM := fromRoleDomain(role)

	if err := repo.db.WithContext(ctx).Create(roleM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateName
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create role")
	}

	role.ID = roleM.ID
	role.CreatedAt = roleM.CreatedAt
	role.UpdatedAt = roleM.UpdatedAt

	return nil
}

// FindRoleByName retrieves a role by its unique name.
func (repo *accessRepository) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	var roleM model.RoleModel
	if err := repo.db.WithContext(ctx).Where("name = ?", name).First(&roleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoleNotFound
		}

		return nil, errors.Wrap(err, "failed to find role by name")
	}

	return toRoleDomain(&roleM), nil
}

// ListRoles retrieves all roles ordered by name.
func (repo *accessRepository) ListRoles(ctx context.Context) ([]*entity.Role, error) {
	var roleModels []model.RoleModel
	if err := repo.db.WithContext(ctx).Order("name").Find(&roleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list roles")
	}

	roles := make([]*entity.Role, len(roleModels))
	for i := range roleModels {
		roles[i] = toRoleDomain(&roleModels[i])
	}

	return roles, nil
}

// CreatePermission persists a new permission.
func (repo *accessRepository) CreatePermission(ctx context.Context, permission *entity.Permission) error {
	permM := fromPermissionDomain(permission)

	if err := repo.db.WithContext(ctx).Create(permM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateName
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create permission")
	}

	permission.ID = permM.ID
	permission.CreatedAt = permM.CreatedAt

	return nil
}

// FindPermissionByName retrieves a permission by its unique name.
func (repo *accessRepository) FindPermissionByName(ctx context.Context, name string) (*entity.Permission, error) {
	var permM model.PermissionModel
	if err := repo.db.WithContext(ctx).Where("name = ?", name).First(&permM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPermissionNotFound
		}

		return nil, errors.Wrap(err, "failed to find permission by name")
	}

	return toPermissionDomain(&permM), nil
}

// CreateUserRole links a user to a role.
func (repo *accessRepository) CreateUserRole(ctx context.Context, link *entity.UserRole) error {
	linkM := &model.UserRoleModel{
		ID:         link.ID,
		UserID:     link.UserID,
		RoleID:     link.RoleID,
		AssignedBy: link.AssignedBy,
	}

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateLink
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrLinkNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to assign role")
	}

	link.ID = linkM.ID
	link.AssignedAt = linkM.AssignedAt

	return nil
}

// DeleteUserRole removes a user-role link.
func (repo *accessRepository) DeleteUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	tx := repo.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&model.UserRoleModel{})
	if tx.Error != nil {
		return domainerrors.NewDatabaseExecuteError(tx.Error, "failed to remove role")
	}
	if tx.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	return nil
}

// ListRoleNamesByUser returns the names of all roles the user holds.
func (repo *accessRepository) ListRoleNamesByUser(ctx context.Context, userID uuid.UUID) (entity.RoleNames, error) {
	var names entity.RoleNames
	err := repo.db.WithContext(ctx).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list role names")
	}

	return names, nil
}

// CreateRolePermission links a role to a permission.
func (repo *accessRepository) CreateRolePermission(ctx context.Context, link *entity.RolePermission) error {
	linkM := &model.RolePermissionModel{
		ID:           link.ID,
		RoleID:       link.RoleID,
		PermissionID: link.PermissionID,
	}

	if err := repo.db.WithContext(ctx).Create(linkM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateLink
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrLinkNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to grant permission")
	}

	link.ID = linkM.ID
	link.CreatedAt = linkM.CreatedAt

	return nil
}

// ListPermissionNamesByRole returns the names of all permissions linked
// to the role.
func (repo *accessRepository) ListPermissionNamesByRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	var names []string
	err := repo.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name").
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list permission names")
	}

	return names, nil
}

// UserHasPermission reports whether any role held by the user grants the
// named permission. Resolution always runs against current rows.
func (repo *accessRepository) UserHasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ? AND roles.is_active = true", userID, permissionName).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to resolve permission")
	}

	return count > 0, nil
}

// --- Mapper Functions ---

func toRoleDomain(data *model.RoleModel) *entity.Role {
	if data == nil {
		return nil
	}

	return &entity.Role{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromRoleDomain(role *entity.Role) *model.RoleModel {
	if role == nil {
		return nil
	}

	return &model.RoleModel{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsActive:    role.IsActive,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

func toPermissionDomain(data *model.PermissionModel) *entity.Permission {
	if data == nil {
		return nil
	}

	return &entity.Permission{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Resource:    data.Resource,
		Action:      data.Action,
		CreatedAt:   data.CreatedAt,
	}
}

func fromPermissionDomain(permission *entity.Permission) *model.PermissionModel {
	if permission == nil {
		return nil
	}

	return &model.PermissionModel{
		ID:          permission.ID,
		Name:        permission.Name,
		Description: permission.Description,
		Resource:    permission.Resource,
		Action:      permission.Action,
		CreatedAt:   permission.CreatedAt,
	}
}
