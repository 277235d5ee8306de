package service

import (
	"context"
	"strings"

	"smartpos/internal/apperror"
	"smartpos/internal/auth"
	"smartpos/internal/model"
	"smartpos/internal/permission"
	"smartpos/internal/repository"
	"smartpos/pkg/validator"

	"github.com/google/uuid"
)

// DTOs for Request validation
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	StoreName string `json:"store_name"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SelfUpdateRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	StoreName *string `json:"store_name"`
}

// PermissionsDoc is the explicit allow/deny override document of a user.
type PermissionsDoc struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

type UpdateUserRequest struct {
	FullName    *string         `json:"full_name"`
	Phone       *string         `json:"phone"`
	Role        *string         `json:"role"`
	StoreName   *string         `json:"store_name"`
	Permissions *PermissionsDoc `json:"permissions"`
	Disabled    *bool           `json:"disabled"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	Phone       string          `json:"phone"`
	Role        string          `json:"role"`
	StoreName   string          `json:"store_name"`
	Disabled    bool            `json:"disabled"`
	Permissions *PermissionsDoc `json:"permissions"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*auth.TokenPair, error)
	Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
	UpdateSelf(ctx context.Context, actor uuid.UUID, req SelfUpdateRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	ResetPassword(ctx context.Context, actor, id uuid.UUID, req ResetPasswordRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actor, id uuid.UUID) error
}

type userService struct {
	repo      repository.UserRepository
	tokens    *auth.TokenService
	audit     *AuditRecorder
	txManager repository.TransactionManager
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, tokens *auth.TokenService, audit *AuditRecorder, txManager repository.TransactionManager) UserService {
	return &userService{repo: repo, tokens: tokens, audit: audit, txManager: txManager}
}

// defaultOverrides seeds the stored document with the role's defaults, or
// clears it when the role has none.
func defaultOverrides(role string) string {
	defaults := permission.DefaultPermissions(role)
	if len(defaults) == 0 {
		return ""
	}
	return permission.Overrides{Allow: defaults, Deny: permission.Set{}}.Encode()
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Role:      user.Role,
		StoreName: user.StoreName,
		Disabled:  user.Disabled,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if strings.TrimSpace(user.Permissions) != "" {
		o := permission.ParseOverrides(user.Permissions)
		resp.Permissions = &PermissionsDoc{Allow: o.Allow.Sorted(), Deny: o.Deny.Sorted()}
	}
	return resp
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperror.InvalidInput("password too long")
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:          req.Email,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Role:           role,
		StoreName:      req.StoreName,
		HashedPassword: hashed,
		Permissions:    defaultOverrides(role),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*auth.TokenPair, error) {
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperror.InvalidInput("password too long")
	}
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthenticated("incorrect email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		return nil, apperror.Unauthenticated("incorrect email or password")
	}
	if user.Disabled {
		return nil, apperror.Forbidden("account disabled")
	}
	return s.tokens.IssuePair(user.ID.String())
}

// ForgotPassword accepts a reset request without revealing whether the
// email is registered. No reset mail is sent yet.
func (s *userService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	_, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return err
	}
	return nil
}

func (s *userService) Refresh(ctx context.Context, req RefreshRequest) (*auth.TokenPair, error) {
	claims, err := s.tokens.Parse(req.RefreshToken, auth.TypeRefresh)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthenticated("user not found")
		}
		return nil, err
	}
	return s.tokens.IssuePair(user.ID.String())
}

// Authenticate resolves an access token to an enabled user.
func (s *userService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TypeAccess)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthenticated("could not validate credentials")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthenticated("could not validate credentials")
		}
		return nil, err
	}
	if user.Disabled {
		return nil, apperror.Forbidden("account disabled")
	}
	return user, nil
}

func (s *userService) UpdateSelf(ctx context.Context, actor uuid.UUID, req SelfUpdateRequest) (*UserResponse, error) {
	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, actor)
		if err != nil {
			return err
		}
		oldValues, newValues := map[string]any{}, map[string]any{}
		if req.FullName != nil {
			oldValues["full_name"], newValues["full_name"] = user.FullName, *req.FullName
			user.FullName = *req.FullName
		}
		if req.Phone != nil {
			oldValues["phone"], newValues["phone"] = user.Phone, *req.Phone
			user.Phone = *req.Phone
		}
		if req.StoreName != nil {
			oldValues["store_name"], newValues["store_name"] = user.StoreName, *req.StoreName
			user.StoreName = *req.StoreName
		}
		if len(newValues) == 0 {
			return nil
		}
		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableProfiles, user.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	limit = clampLimit(limit, 200, 200)

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

// UpdateUser edits profile fields, role, overrides and the disabled flag.
// Changing the role without sending overrides resets them to the role defaults.
func (s *userService) UpdateUser(ctx context.Context, actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		oldValues, newValues := map[string]any{}, map[string]any{}
		if req.FullName != nil {
			oldValues["full_name"], newValues["full_name"] = user.FullName, *req.FullName
			user.FullName = *req.FullName
		}
		if req.Phone != nil {
			oldValues["phone"], newValues["phone"] = user.Phone, *req.Phone
			user.Phone = *req.Phone
		}
		if req.StoreName != nil {
			oldValues["store_name"], newValues["store_name"] = user.StoreName, *req.StoreName
			user.StoreName = *req.StoreName
		}
		if req.Disabled != nil {
			oldValues["disabled"], newValues["disabled"] = user.Disabled, *req.Disabled
			user.Disabled = *req.Disabled
		}
		if req.Role != nil {
			oldValues["role"], newValues["role"] = user.Role, *req.Role
			user.Role = *req.Role
		}
		switch {
		case req.Permissions != nil:
			doc := permission.Overrides{
				Allow: permission.NewSet(req.Permissions.Allow...),
				Deny:  permission.NewSet(req.Permissions.Deny...),
			}.Encode()
			oldValues["permissions"], newValues["permissions"] = user.Permissions, doc
			user.Permissions = doc
		case req.Role != nil:
			doc := defaultOverrides(*req.Role)
			oldValues["permissions"], newValues["permissions"] = user.Permissions, doc
			user.Permissions = doc
		}

		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionUpdate, model.TableProfiles, user.ID, oldValues, newValues)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ResetPassword(ctx context.Context, actor, id uuid.UUID, req ResetPasswordRequest) (*UserResponse, error) {
	if len(req.Password) > auth.MaxPasswordBytes {
		return nil, apperror.InvalidInput("password too long")
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	var user *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		user, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		if err := s.repo.Update(txCtx, user); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionResetPassword, model.TableProfiles, user.ID, nil, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actor, id uuid.UUID) error {
	if actor == id {
		return apperror.InvalidInput("cannot delete your own account")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		s.audit.Record(txCtx, actor, model.ActionDelete, model.TableProfiles, id,
			map[string]any{"email": user.Email, "role": user.Role}, nil)
		return nil
	})
}
