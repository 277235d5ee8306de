package repository

import (
	"context"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository stores custom roles. It also serves as the
// permission.RoleResolver for roles that are not built in.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	CreatePermission(ctx context.Context, perm *model.Permission) error
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, codes []string, group func(string) string) error
	PermissionsForRole(ctx context.Context, roleName string) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return mapError(GetDB(ctx, r.db).Omit("Permissions").Create(role).Error, "role")
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return mapError(GetDB(ctx, r.db).Omit("Permissions").Save(role).Error, "role")
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	role := model.Role{Identity: model.Identity{ID: id}}
	if err := db.Model(&role).Association("Permissions").Clear(); err != nil {
		return mapError(err, "role")
	}
	return mapError(db.Where("id = ?", id).Delete(&model.Role{}).Error, "role")
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
		return nil, mapError(err, "role")
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, mapError(err, "role")
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := GetDB(ctx, r.db).Preload("Permissions").Order("created_at asc").Find(&roles).Error
	return roles, mapError(err, "roles")
}

func (r *roleRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	err := GetDB(ctx, r.db).Order("code asc").Find(&perms).Error
	return perms, mapError(err, "permissions")
}

func (r *roleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	return mapError(GetDB(ctx, r.db).Create(perm).Error, "permission")
}

// ReplacePermissions sets the role's codes, creating unknown codes on the fly.
func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, codes []string, group func(string) string) error {
	db := GetDB(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return mapError(err, "role")
	}

	perms := make([]model.Permission, 0, len(codes))
	for _, code := range codes {
		perm := model.Permission{Code: code, Group: group(code)}
		if err := db.Where("code = ?", code).FirstOrCreate(&perm).Error; err != nil {
			return mapError(err, "permission")
		}
		perms = append(perms, perm)
	}
	return mapError(db.Model(&role).Association("Permissions").Replace(perms), "role permissions")
}

func (r *roleRepository) PermissionsForRole(ctx context.Context, roleName string) ([]string, error) {
	role, err := r.FindByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		codes = append(codes, p.Code)
	}
	return codes, nil
}
