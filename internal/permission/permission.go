// Package permission decides whether an actor holds a capability.
//
// A capability is a dotted string such as "sales.create". Grants come from the
// actor's role defaults plus explicit per-user allow entries; explicit deny
// entries always win. Granted entries may be "*" or end in a single trailing
// "*" to match by prefix.
package permission

import (
	"encoding/json"
	"sort"
	"strings"

	"smartpos/internal/apperror"
)

const (
	roleAdmin = "admin"
	wildcard  = "*"
)

// Set is an unordered set of capability strings.
type Set map[string]struct{}

// NewSet builds a Set from codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set with the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

var defaultRolePermissions = map[string][]string{
	"employee": {
		"sales.read",
		"sales.create",
		"products.read",
		"customers.read",
		"customers.write",
		"promotions.read",
		"inventory.alerts.read",
		"reports.read",
		"reports.insights.read",
		"settings.read",
	},
	"manager": {
		"sales.read",
		"sales.create",
		"products.read",
		"products.write",
		"products.delete",
		"customers.read",
		"customers.write",
		"inventory.read",
		"inventory.count",
		"inventory.adjust",
		"inventory.alerts.read",
		"purchases.read",
		"purchases.write",
		"returns.read",
		"returns.create",
		"returns.approve",
		"promotions.read",
		"promotions.write",
		"reports.read",
		"reports.insights.read",
		"settings.read",
		"users.read",
	},
}

// adminOnly are capabilities no built-in default grants; they exist so that
// custom roles and overrides can hand them out.
var adminOnly = []string{
	"audit.read",
	"roles.manage",
	"sales.void",
	"settings.write",
	"users.write",
}

// Catalogue lists every known capability code in lexical order.
func Catalogue() []string {
	all := NewSet(adminOnly...)
	for _, codes := range defaultRolePermissions {
		for _, c := range codes {
			all[c] = struct{}{}
		}
	}
	return all.Sorted()
}

// Group is the leading segment of a capability code.
func Group(code string) string {
	if i := strings.IndexByte(code, '.'); i > 0 {
		return code[:i]
	}
	return code
}

// IsBuiltinRole reports whether role has a static default table (or is admin).
func IsBuiltinRole(role string) bool {
	if role == roleAdmin {
		return true
	}
	_, ok := defaultRolePermissions[role]
	return ok
}

// DefaultPermissions returns the static grants of a built-in role.
// Unknown or empty roles get an empty set.
func DefaultPermissions(role string) Set {
	return NewSet(defaultRolePermissions[role]...)
}

// Overrides are the explicit per-user allow and deny lists.
type Overrides struct {
	Allow Set
	Deny  Set
}

// ParseOverrides decodes a stored {"allow": [...], "deny": [...]} document.
// Anything missing or malformed yields empty sets rather than an error.
func ParseOverrides(raw string) Overrides {
	o := Overrides{Allow: Set{}, Deny: Set{}}
	if strings.TrimSpace(raw) == "" {
		return o
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return o
	}
	o.Allow = stringSet(doc["allow"])
	o.Deny = stringSet(doc["deny"])
	return o
}

func stringSet(v any) Set {
	list, ok := v.([]any)
	if !ok {
		return Set{}
	}
	s := make(Set, len(list))
	for _, item := range list {
		if code, ok := item.(string); ok {
			s[code] = struct{}{}
		}
	}
	return s
}

// Encode renders the overrides in their stored JSON shape.
func (o Overrides) Encode() string {
	doc := map[string][]string{"allow": o.Allow.Sorted(), "deny": o.Deny.Sorted()}
	b, _ := json.Marshal(doc)
	return string(b)
}

// Empty reports whether neither list has entries.
func (o Overrides) Empty() bool {
	return len(o.Allow) == 0 && len(o.Deny) == 0
}

// Actor is the subject of an authorization decision.
type Actor struct {
	Role      string
	Overrides Overrides
}

// Match reports whether a granted entry covers the required capability.
func Match(granted, required string) bool {
	if granted == wildcard {
		return true
	}
	if strings.HasSuffix(granted, wildcard) {
		return strings.HasPrefix(required, strings.TrimSuffix(granted, wildcard))
	}
	return granted == required
}

func matchAny(grants Set, required string) bool {
	for g := range grants {
		if Match(g, required) {
			return true
		}
	}
	return false
}

func decide(actor Actor, roleDefaults Set, required string) bool {
	if actor.Role == roleAdmin {
		return true
	}
	if matchAny(actor.Overrides.Deny, required) {
		return false
	}
	return matchAny(roleDefaults.Union(actor.Overrides.Allow), required)
}

// HasPermission evaluates required against the built-in role table and the
// actor's overrides.
func HasPermission(actor Actor, required string) bool {
	return decide(actor, DefaultPermissions(actor.Role), required)
}

// RequireRole is the route guard: admin always passes; when allowPerms is
// non-empty the actor needs any one of them and the role list is ignored;
// otherwise the role must be listed.
func RequireRole(actor Actor, allowedRoles []string, allowPerms []string) error {
	return requireRole(actor, allowedRoles, allowPerms, func(p string) bool {
		return HasPermission(actor, p)
	})
}

func requireRole(actor Actor, allowedRoles, allowPerms []string, has func(string) bool) error {
	if actor.Role == roleAdmin {
		return nil
	}
	if len(allowPerms) > 0 {
		for _, p := range allowPerms {
			if has(p) {
				return nil
			}
		}
		return apperror.Forbidden("insufficient permissions")
	}
	for _, r := range allowedRoles {
		if r == actor.Role {
			return nil
		}
	}
	return apperror.Forbidden("insufficient permissions")
}
