package shared

import "strings"

// Role is the caller role supplied by the identity collaborator.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// ParseRole normalises a role string.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleStaff, RoleManager, RoleAdmin, RoleSuperadmin:
		return role, true
	default:
		return "", false
	}
}

// Privileged reports whether the role may drive status transitions.
func (r Role) Privileged() bool {
	return r == RoleManager || r == RoleSuperadmin
}

// Actor identifies the caller of an operation.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// Valid reports whether the actor carries an identity and a known role.
func (a Actor) Valid() bool {
	_, ok := ParseRole(string(a.Role))
	return a.ID > 0 && ok
}

// Action names an operation subject to authorization.
type Action string

const (
	ActionQuotationCreate       Action = "quotation.create"
	ActionQuotationView         Action = "quotation.view"
	ActionQuotationTransition   Action = "quotation.transition"
	ActionQuotationEdit         Action = "quotation.edit"
	ActionSalesOrderMaterialize Action = "sales_order.materialize"
	ActionSalesOrderView        Action = "sales_order.view"
	ActionSalesOrderEdit        Action = "sales_order.edit"
	ActionSalesOrderTransition  Action = "sales_order.transition"
	ActionDeliveryCommit        Action = "delivery.commit"
	ActionDeliveryView          Action = "delivery.view"
	ActionProgressView          Action = "progress.view"
)

// Resource carries the facts about the target record the policy needs.
type Resource struct {
	// OwnerID is the creator of the record, zero when not applicable.
	OwnerID int64
	// Locked is set when the record's status forbids the action.
	Locked bool
	// RequiresPrivilege marks transitions reserved for privileged roles.
	RequiresPrivilege bool
}

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
	err     error
}

// Err returns nil when allowed, otherwise the reason sentinel.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.err != nil {
		return d.err
	}
	return ErrRoleNotPermitted
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason *Reason) Decision {
	return Decision{Allowed: false, Reason: reason.ReasonCode(), err: reason}
}

// Authorize is the single policy consulted by every mutating operation.
func Authorize(actor Actor, action Action, res Resource) Decision {
	if !actor.Valid() {
		return deny(ErrUnauthenticated)
	}
	switch action {
	case ActionQuotationCreate, ActionQuotationView, ActionSalesOrderView,
		ActionDeliveryView, ActionProgressView, ActionSalesOrderMaterialize:
		return allow()
	case ActionQuotationTransition:
		if !actor.Role.Privileged() {
			return deny(ErrRoleNotPermitted)
		}
		return allow()
	case ActionQuotationEdit, ActionSalesOrderEdit:
		if res.Locked {
			return deny(ErrStatusLocked)
		}
		if actor.Role.Privileged() || (res.OwnerID != 0 && res.OwnerID == actor.ID) {
			return allow()
		}
		return deny(ErrNotOwner)
	case ActionSalesOrderTransition:
		if res.Locked {
			return deny(ErrStatusLocked)
		}
		if res.RequiresPrivilege && !actor.Role.Privileged() {
			return deny(ErrRoleNotPermitted)
		}
		return allow()
	case ActionDeliveryCommit:
		if res.Locked {
			return deny(ErrStatusLocked)
		}
		return allow()
	default:
		return deny(ErrUnknownAction)
	}
}
