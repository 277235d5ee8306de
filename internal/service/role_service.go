package service

import (
	"context"
	"strings"

	"smartpos/internal/apperror"
	"smartpos/internal/model"
	"smartpos/internal/permission"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"` // capability codes, wildcards allowed
}

type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
}

type UpdateRolePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id,omitempty"`
	Code  string `json:"code"`
	Group string `json:"group"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error)
	CreateRole(ctx context.Context, actor uuid.UUID, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, actor, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, actor, id uuid.UUID) error
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	UpdateRolePermissions(ctx context.Context, actor, roleID uuid.UUID, req UpdateRolePermissionsRequest) (*RoleResponse, error)
	SeedPermissions(ctx context.Context) error
}

type roleService struct {
	repo      repository.RoleRepository
	evaluator *permission.Evaluator
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

func NewRoleService(repo repository.RoleRepository, evaluator *permission.Evaluator, audit *AuditRecorder, txManager repository.TransactionManager) RoleService {
	return &roleService{repo: repo, evaluator: evaluator, audit: audit, txManager: txManager}
}

// --- Implementation ---

// ListRoles returns the built-in roles followed by the stored custom roles.
func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]RoleResponse, 0, len(roles)+3)
	for _, name := range []string{model.RoleAdmin, model.RoleManager, model.RoleEmployee} {
		res = append(res, builtinRoleResponse(name))
	}
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id uuid.UUID) (*RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, actor uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if permission.IsBuiltinRole(name) {
		return nil, apperror.Conflict("role %q is built in", name)
	}
	role := &model.Role{Name: name, Description: req.Description}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, role); err != nil {
			return err
		}
		codes := normalizeCodes(req.Permissions)
		if len(codes) > 0 {
			if err := s.repo.ReplacePermissions(txCtx, role.ID, codes, permission.Group); err != nil {
				return err
			}
		}
		s.audit.Record(txCtx, actor, model.ActionCreate, model.TableRoles, role.ID, nil, map[string]any{
			"name":        role.Name,
			"permissions": codes,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evaluator.Invalidate(role.Name)
	return s.GetRole(ctx, role.ID)
}

func (s *roleService) UpdateRole(ctx context.Context, actor, id uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if permission.IsBuiltinRole(name) {
		return nil, apperror.Conflict("role %q is built in", name)
	}

	var oldName string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		oldName = role.Name
		oldValues := map[string]any{"name": role.Name, "description": role.Description}
		role.Name = name
		role.Description = req.Description
		if err := s.repo.Update(txCtx, role); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableRoles, role.ID, oldValues,
			map[string]any{"name": role.Name, "description": role.Description})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evaluator.Invalidate(oldName)
	s.evaluator.Invalidate(name)
	return s.GetRole(ctx, id)
}

func (s *roleService) DeleteRole(ctx context.Context, actor, id uuid.UUID) error {
	var name string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		name = role.Name
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionDelete, model.TableRoles, id,
			map[string]any{"name": role.Name, "permissions": permissionCodes(role.Permissions)}, nil)
		return nil
	})
	if err != nil {
		return err
	}
	s.evaluator.Invalidate(name)
	return nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func (s *roleService) UpdateRolePermissions(ctx context.Context, actor, roleID uuid.UUID, req UpdateRolePermissionsRequest) (*RoleResponse, error) {
	codes := normalizeCodes(req.Permissions)
	var name string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.repo.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}
		name = role.Name
		if err := s.repo.ReplacePermissions(txCtx, roleID, codes, permission.Group); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableRoles, roleID,
			map[string]any{"permissions": permissionCodes(role.Permissions)},
			map[string]any{"permissions": codes})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evaluator.Invalidate(name)
	return s.GetRole(ctx, roleID)
}

// SeedPermissions makes sure every known capability code has a permission row.
func (s *roleService) SeedPermissions(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		perms, err := s.repo.ListPermissions(txCtx)
		if err != nil {
			return err
		}
		existing := make(map[string]bool, len(perms))
		for _, p := range perms {
			existing[p.Code] = true
		}
		for _, code := range permission.Catalogue() {
			if existing[code] {
				continue
			}
			if err := s.repo.CreatePermission(txCtx, &model.Permission{Code: code, Group: permission.Group(code)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- Helpers ---

func normalizeCodes(codes []string) []string {
	set := permission.Set{}
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return set.Sorted()
}

func permissionCodes(perms []model.Permission) []string {
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		codes = append(codes, p.Code)
	}
	return codes
}

func builtinRoleResponse(name string) RoleResponse {
	codes := permission.DefaultPermissions(name).Sorted()
	if name == model.RoleAdmin {
		codes = []string{"*"}
	}
	perms := make([]PermissionResponse, 0, len(codes))
	for _, c := range codes {
		perms = append(perms, PermissionResponse{Code: c, Group: permission.Group(c)})
	}
	return RoleResponse{Name: name, IsSystem: true, Permissions: perms}
}

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Group: p.Group,
	}
}
