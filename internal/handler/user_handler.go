package handler

import (
	"net/http"

	"smartpos/internal/apperror"
	"smartpos/internal/middleware"
	"smartpos/internal/model"
	"smartpos/internal/service"
	"smartpos/pkg/pagination"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	evaluator   evaluatorDefaults
	cookies     middleware.CookieOptions
}

// NewUserHandler sets up the routing dependencies for auth and user endpoints
func NewUserHandler(userService service.UserService, evaluator evaluatorDefaults, cookies middleware.CookieOptions) *UserHandler {
	return &UserHandler{userService: userService, evaluator: evaluator, cookies: cookies}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	// Public routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/forgot-password", h.ForgotPassword)

		authGroup.GET("/me", g.Authenticate, h.GetMe)
		authGroup.PATCH("/me", g.Authenticate, h.UpdateMe)
	}

	// Protected users routes
	users := router.Group("/users", g.Authenticate)
	{
		users.GET("", g.Require(middleware.Roles(model.RoleAdmin), "users.read"), h.ListUsers)
		users.GET("/:id", g.Require(middleware.Roles(model.RoleAdmin), "users.read"), h.GetUserByID)
		users.PATCH("/:id", g.Require(middleware.Roles(model.RoleAdmin), "users.write"), h.UpdateUser)
		users.POST("/:id/reset-password", g.Require(middleware.Roles(model.RoleAdmin), "users.write"), h.ResetPassword)
		users.DELETE("/:id", g.Require(middleware.Roles(model.RoleAdmin), "users.write"), h.DeleteUser)
	}
}

// Register handles POST /auth/register
// @Summary      Register a new user
// @Description  Creates an account; the stored overrides start from the role defaults
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Login handles POST /auth/login with a JSON body or an OAuth2 password form
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning an access/refresh token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=auth.TokenPair}
// @Failure      401      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	var err error
	if c.ContentType() == "application/x-www-form-urlencoded" || c.ContentType() == "multipart/form-data" {
		err = c.ShouldBind(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		writeError(c, apperror.InvalidInput("invalid request payload"))
		return
	}

	pair, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	// Set tokens as HttpOnly cookies
	middleware.SetTokenCookies(c, pair, h.cookies)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pair))
}

// RefreshToken handles POST /auth/refresh to issue a new token pair
// @Summary      Refresh token
// @Description  Issues a new access and refresh token from a valid refresh token (body or cookie)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest   false  "Refresh Token"
// @Success      200      {object}  response.Response{data=auth.TokenPair}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req service.RefreshRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req) {
			return
		}
	}
	if req.RefreshToken == "" {
		req.RefreshToken = middleware.RefreshCookie(c)
	}
	if req.RefreshToken == "" {
		writeError(c, apperror.Unauthenticated("refresh token is missing"))
		return
	}

	pair, err := h.userService.Refresh(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, pair, h.cookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pair))
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Clears the token cookies
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookies(c, h.cookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// ForgotPasswordMessage is returned whether or not the email is registered.
const ForgotPasswordMessage = "If an account matches this email, a reset link has been sent."

// ForgotPassword handles POST /auth/forgot-password
// @Summary      Request a password reset
// @Description  Always answers with the same message so accounts cannot be enumerated
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /api/auth/forgot-password [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req service.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.userService.ForgotPassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"detail": ForgotPasswordMessage}))
}

type meResponse struct {
	*service.UserResponse
	EffectivePermissions []string `json:"effective_permissions"`
}

// GetMe handles GET /auth/me
// @Summary      Get current user
// @Description  Returns the authenticated user and the capabilities granted by role and overrides
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	effective, err := h.effectivePermissions(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, meResponse{UserResponse: user, EffectivePermissions: effective}))
}

// effectivePermissions lists role defaults plus explicit allows, minus anything denied.
func (h *UserHandler) effectivePermissions(c *gin.Context) ([]string, error) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		return []string{}, nil
	}
	actor := middleware.ActorOf(current)
	if actor.Role == model.RoleAdmin {
		return []string{"*"}, nil
	}
	defaults, err := h.evaluator.RoleDefaults(c.Request.Context(), actor.Role)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, code := range defaults.Union(actor.Overrides.Allow).Sorted() {
		ok, err := h.evaluator.HasPermission(c.Request.Context(), actor, code)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, code)
		}
	}
	return out, nil
}

// UpdateMe handles PATCH /auth/me
// @Summary      Update current user
// @Description  Updates the caller's own profile fields
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SelfUpdateRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Router       /api/auth/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req service.SelfUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateSelf(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ListUsers handles GET /users
// @Summary      List users
// @Description  Get a paginated list of users, newest first
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.UserResponse}
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(users, p.Page, p.Limit, total))
}

// GetUserByID handles GET /users/:id
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// UpdateUser handles PATCH /users/:id
// @Summary      Update a user
// @Description  Updates profile, role, permission overrides or the disabled flag
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/users/{id} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ResetPassword handles POST /users/:id/reset-password
// @Summary      Reset a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "User ID"
// @Param        payload  body      service.ResetPasswordRequest  true  "New password"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Router       /api/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ResetPassword(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeleteUser handles DELETE /users/:id
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "User deleted successfully"}))
}
