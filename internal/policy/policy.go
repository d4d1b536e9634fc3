// Package policy is the pure access-control decision engine. It has no
// dependencies and no side effects: callers load the target entity, ask for a
// decision, then act on it. Role-dependent behavior is data-driven over the
// role enumeration rather than spread across per-role types, which keeps the
// decision table auditable in one place.
package policy

// Role is the capability level attached to a user account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// Operation enumerates the guarded operations.
type Operation string

const (
	OpDocumentCreate   Operation = "document:create"
	OpDocumentRead     Operation = "document:read"
	OpDocumentUpdate   Operation = "document:update"
	OpDocumentDelete   Operation = "document:delete"
	OpDocumentDownload Operation = "document:download"
	OpUserAdmin        Operation = "user:admin"
)

// Decision is the outcome of a policy evaluation. Reason is set on denials and
// distinguishes role denials from ownership denials for observability; both
// surface to callers as the same forbidden error kind.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide evaluates whether the actor may perform op against a resource owned
// by ownerID. For OpDocumentCreate and OpUserAdmin ownerID is ignored.
func Decide(actor Actor, ownerID string, op Operation) Decision {
	if actor.Role == RoleAdmin {
		return allow()
	}

	switch op {
	case OpDocumentCreate:
		// Any authenticated role may upload.
		return allow()
	case OpDocumentRead, OpDocumentDownload:
		if actor.Role == RoleEditor {
			return allow()
		}
		if actor.ID == ownerID {
			return allow()
		}
		return deny("viewers can only access their own documents")
	case OpDocumentUpdate:
		if actor.Role == RoleViewer {
			return deny("viewers cannot update documents")
		}
		if actor.ID != ownerID {
			return deny("editors can only update their own documents")
		}
		return allow()
	case OpDocumentDelete:
		if actor.Role == RoleViewer {
			return deny("viewers cannot delete documents")
		}
		if actor.ID != ownerID {
			return deny("editors can only delete their own documents")
		}
		return allow()
	case OpUserAdmin:
		return deny("user administration requires the admin role")
	}
	return deny("unknown operation")
}

// OwnerScoped reports whether list and stats queries for the role must be
// narrowed to documents the actor owns. This is a filtering obligation the
// caller applies to its query, not an allow/deny outcome.
func OwnerScoped(role Role) bool {
	return role != RoleAdmin
}
