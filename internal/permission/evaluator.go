package permission

import (
	"context"
	"sync"
	"time"

	"smartpos/internal/apperror"
)

// RoleResolver loads the grants of custom roles kept in storage.
type RoleResolver interface {
	PermissionsForRole(ctx context.Context, role string) ([]string, error)
}

type cacheEntry struct {
	codes     Set
	expiresAt time.Time
}

// Evaluator extends the static role table with custom roles from a RoleResolver.
// Resolved grants are cached per role for TTL.
type Evaluator struct {
	resolver RoleResolver
	ttl      time.Duration
	cache    sync.Map // role name -> cacheEntry
	now      func() time.Time
}

// NewEvaluator returns an Evaluator; a nil resolver restricts it to built-in roles.
func NewEvaluator(resolver RoleResolver, ttl time.Duration) *Evaluator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Evaluator{resolver: resolver, ttl: ttl, now: time.Now}
}

// RoleDefaults returns the default grants for role.
func (e *Evaluator) RoleDefaults(ctx context.Context, role string) (Set, error) {
	if IsBuiltinRole(role) || role == "" || e.resolver == nil {
		return DefaultPermissions(role), nil
	}
	if v, ok := e.cache.Load(role); ok {
		entry := v.(cacheEntry)
		if e.now().Before(entry.expiresAt) {
			return entry.codes, nil
		}
	}
	codes, err := e.resolver.PermissionsForRole(ctx, role)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return Set{}, nil
		}
		return nil, err
	}
	set := NewSet(codes...)
	e.cache.Store(role, cacheEntry{codes: set, expiresAt: e.now().Add(e.ttl)})
	return set, nil
}

// HasPermission is HasPermission with custom-role defaults.
func (e *Evaluator) HasPermission(ctx context.Context, actor Actor, required string) (bool, error) {
	if actor.Role == roleAdmin {
		return true, nil
	}
	defaults, err := e.RoleDefaults(ctx, actor.Role)
	if err != nil {
		return false, err
	}
	return decide(actor, defaults, required), nil
}

// RequireRole is RequireRole with custom-role defaults.
func (e *Evaluator) RequireRole(ctx context.Context, actor Actor, allowedRoles, allowPerms []string) error {
	if actor.Role == roleAdmin {
		return nil
	}
	defaults, err := e.RoleDefaults(ctx, actor.Role)
	if err != nil {
		return err
	}
	return requireRole(actor, allowedRoles, allowPerms, func(p string) bool {
		return decide(actor, defaults, p)
	})
}

// Invalidate drops cached grants for role, or for every role when role is empty.
func (e *Evaluator) Invalidate(role string) {
	if role != "" {
		e.cache.Delete(role)
		return
	}
	e.cache.Range(func(key, _ any) bool {
		e.cache.Delete(key)
		return true
	})
}
