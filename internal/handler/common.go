package handler

import (
	"context"
	"strings"
	"time"

	"smartpos/internal/apperror"
	"smartpos/internal/middleware"
	"smartpos/internal/permission"
	"smartpos/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Guards carries the authentication and authorization middleware shared by
// every handler's routes.
type Guards struct {
	Authenticate gin.HandlerFunc
	Evaluator    *permission.Evaluator
}

// Require builds a RequireRole guard for roles, or for perms when any are given.
func (g Guards) Require(roles []string, perms ...string) gin.HandlerFunc {
	return middleware.RequireRole(g.Evaluator, roles, perms...)
}

// writeError renders err with the status of its kind.
func writeError(c *gin.Context, err error) {
	resp := response.FromError(err)
	if resp.StatusCode >= 500 {
		_ = c.Error(err)
	}
	c.JSON(resp.StatusCode, resp)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperror.InvalidInput("invalid request payload: %v", err))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, apperror.InvalidInput("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(c, apperror.InvalidInput("invalid %s", name))
		return nil, false
	}
	return &id, true
}

// parseDate accepts RFC3339 or YYYY-MM-DD. A bare end date covers that whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.InvalidInput("invalid date %q, expected YYYY-MM-DD or RFC3339", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func dateRange(c *gin.Context) (start, end *time.Time, ok bool) {
	start, err := parseDate(c.Query("start_date"), false)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	end, err = parseDate(c.Query("end_date"), true)
	if err != nil {
		writeError(c, err)
		return nil, nil, false
	}
	return start, end, true
}

// evaluatorDefaults is the part of the permission evaluator used to report
// effective grants.
type evaluatorDefaults interface {
	RoleDefaults(ctx context.Context, role string) (permission.Set, error)
	HasPermission(ctx context.Context, actor permission.Actor, required string) (bool, error)
}
