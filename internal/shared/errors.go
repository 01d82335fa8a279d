package shared

import "github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"

// Reason is a validation or policy failure with a stable code. It unwraps to
// one of the httpx kinds so transports can map it without knowing the code.
type Reason struct {
	code string
	kind error
	msg  string
}

// NewReason declares a reason sentinel.
func NewReason(code string, kind error, msg string) *Reason {
	return &Reason{code: code, kind: kind, msg: msg}
}

func (r *Reason) Error() string { return r.msg }

// Unwrap exposes the transport kind.
func (r *Reason) Unwrap() error { return r.kind }

// ReasonCode returns the stable machine-readable code.
func (r *Reason) ReasonCode() string { return r.code }

var (
	// ErrUnauthenticated indicates that no caller identity accompanied the call.
	ErrUnauthenticated = NewReason("unauthenticated", httpx.ErrUnauthorized, "caller identity required")
	// ErrRoleNotPermitted indicates the caller's role may not perform the action.
	ErrRoleNotPermitted = NewReason("role_not_permitted", httpx.ErrForbidden, "role not permitted for this action")
	// ErrNotOwner indicates a non-privileged caller touching someone else's record.
	ErrNotOwner = NewReason("not_owner", httpx.ErrForbidden, "only the creator or a privileged role may modify this record")
	// ErrStatusLocked indicates the record's status no longer accepts the action.
	ErrStatusLocked = NewReason("status_locked", httpx.ErrConflict, "record status does not allow this action")
	// ErrUnknownAction guards against unmapped actions.
	ErrUnknownAction = NewReason("unknown_action", httpx.ErrForbidden, "action not recognised by policy")
)
