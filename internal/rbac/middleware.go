// Package rbac resolves the caller identity for HTTP handlers.
package rbac

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/fulfillment-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/fulfillment-ledger/internal/shared"
)

// Identity headers set by the upstream gateway.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

// Middleware wires identity helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Identify stores the caller identity, when present and well formed, in the
// request context. Requests without identity pass through untouched.
func (m Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.actorFromHeaders(r)
		if ok {
			r = r.WithContext(shared.ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActor rejects requests that carry no valid identity.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the caller has one of roles.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if len(allowed) > 0 {
				if _, ok := allowed[actor.Role]; !ok {
					httpx.RespondError(w, shared.ErrRoleNotPermitted)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) actorFromHeaders(r *http.Request) (shared.Actor, bool) {
	rawID := strings.TrimSpace(r.Header.Get(HeaderActorID))
	rawRole := r.Header.Get(HeaderActorRole)
	if rawID == "" && rawRole == "" {
		return shared.Actor{}, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		if m.Logger != nil {
			m.Logger.Warn("rbac parse actor id", slog.String("value", rawID))
		}
		return shared.Actor{}, false
	}
	role, ok := shared.ParseRole(rawRole)
	if !ok {
		if m.Logger != nil {
			m.Logger.Warn("rbac unknown role", slog.String("value", rawRole), slog.Int64("actor_id", id))
		}
		return shared.Actor{}, false
	}
	return shared.Actor{ID: id, Role: role}, true
}

func normalizeRoles(roles []shared.Role) map[shared.Role]struct{} {
	set := make(map[shared.Role]struct{}, len(roles))
	for _, r := range roles {
		if role, ok := shared.ParseRole(string(r)); ok {
			set[role] = struct{}{}
		}
	}
	return set
}
