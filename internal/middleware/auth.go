package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/auth"
	"smartpos/internal/model"
	"smartpos/internal/permission"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUser   = "user"
	ctxUserID = "userID"

	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// Authenticator resolves an access token to an enabled user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// CookieOptions controls how token cookies are written.
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, pair *auth.TokenPair, opts CookieOptions) {
	// Cross-origin deployments need SameSite=None, which browsers only accept with Secure.
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(accessCookie, pair.AccessToken, int(opts.AccessTTL.Seconds()), "/", "", opts.Secure, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(opts.RefreshTTL.Seconds()), "/", "", opts.Secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context, opts CookieOptions) {
	sameSite := http.SameSiteLaxMode
	if opts.Secure {
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(accessCookie, "", -1, "/", "", opts.Secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", opts.Secure, true)
}

// RefreshCookie returns the refresh token cookie, if any.
func RefreshCookie(c *gin.Context) string {
	token, _ := c.Cookie(refreshCookie)
	return token
}

// bearerToken prefers the Authorization header and falls back to the cookie.
func bearerToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperror.Unauthenticated("invalid authorization format, expected 'Bearer <token>'")
		}
		return parts[1], nil
	}
	if token, err := c.Cookie(accessCookie); err == nil && token != "" {
		return token, nil
	}
	return "", apperror.Unauthenticated("authorization is missing")
}

func abortWithError(c *gin.Context, err error) {
	resp := response.FromError(err)
	if resp.StatusCode == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}

// Authenticate validates the access token and stores the current user in the context.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxUserID, user.ID)
		c.Next()
	}
}

// RequireRole lets admins through; otherwise the actor needs any of perms,
// or, when no perms are given, one of roles. Must run after Authenticate.
func RequireRole(evaluator *permission.Evaluator, roles []string, perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, apperror.Unauthenticated("could not validate credentials"))
			return
		}
		if err := evaluator.RequireRole(c.Request.Context(), ActorOf(user), roles, perms); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// Roles is shorthand for a route's allowed role list.
func Roles(roles ...string) []string { return roles }

// ActorOf builds the permission subject of a user.
func ActorOf(user *model.User) permission.Actor {
	return permission.Actor{Role: user.Role, Overrides: permission.ParseOverrides(user.Permissions)}
}

// CurrentUser returns the authenticated user stored by Authenticate.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// CurrentUserID returns the authenticated user's id, or uuid.Nil.
func CurrentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
