package authz

import "zakaz/internal/domain"

// Role names embedded in tokens.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims is the verified identity extracted from a valid bearer token.
type Claims struct {
	Identity string
	Roles    []string
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Action names an operation a caller may attempt.
type Action string

const (
	ActionCreateOrder   Action = "order:create"
	ActionReadOrder     Action = "order:read"
	ActionUpdateOrder   Action = "order:update"
	ActionCancelOrder   Action = "order:cancel"
	ActionListOwnOrders Action = "order:list"
	ActionListUsers     Action = "user:list"
)

// requiredRole maps actions that demand a specific role.
var requiredRole = map[Action]string{
	ActionListUsers: RoleAdmin,
}

// adminOverride marks instance-scoped actions where the admin role bypasses
// the ownership check. Mutations stay owner-only.
var adminOverride = map[Action]bool{
	ActionReadOrder: true,
}

// Resource carries the ownership metadata of a specific resource instance.
// A nil resource means the action is not scoped to one instance.
type Resource struct {
	Owner string
}

// Decision is the outcome of an authorization check. Reason is nil when
// Allowed is true, otherwise one of the domain sentinel errors.
type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision         { return Decision{Allowed: true} }
func deny(err error) Decision { return Decision{Reason: err} }

// Authorize decides whether the caller may perform action on resource. It is
// deterministic and free of side effects: everything it needs arrives as an
// argument.
func Authorize(claims *Claims, action Action, resource *Resource) Decision {
	if claims == nil || claims.Identity == "" {
		return deny(domain.ErrUnauthenticated)
	}
	if role, ok := requiredRole[action]; ok && !claims.HasRole(role) {
		return deny(domain.ErrInsufficientRole)
	}
	if resource != nil && resource.Owner != claims.Identity {
		if !(adminOverride[action] && claims.HasRole(RoleAdmin)) {
			return deny(domain.ErrNotOwner)
		}
	}
	return allow()
}
