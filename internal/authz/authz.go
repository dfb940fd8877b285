// Package authz implements the two-phase authorization policy gating access
// to listings and reviews. Decisions are pure functions of the caller's
// identity snapshot and the target resource; the package performs no I/O and
// never returns errors of its own.
package authz

import (
	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
)

// Operation is the kind of action a request wants to perform on a resource.
// Request routing resolves each endpoint to exactly one Operation at compile
// time; there is no dispatch on action-name strings.
type Operation int

// Possible operations
const (
	OpList Operation = iota
	OpRetrieve
	OpCreate
	OpUpdate
	OpDelete
)

// String returns the operation name for logging.
func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpRetrieve:
		return "retrieve"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IsSafe reports whether the operation only reads state.
func (op Operation) IsSafe() bool {
	return op == OpList || op == OpRetrieve
}

// Identity is the caller snapshot a policy decision is made against.
// It is assembled once per request from already-loaded data; repeated checks
// against the same identity and resource yield the same result.
type Identity struct {
	ID            uuid.UUID
	Authenticated bool
	Administrator bool
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

// IdentityFor builds an Identity snapshot from a loaded user account.
func IdentityFor(u *domain.User) Identity {
	if u == nil {
		return Anonymous
	}
	return Identity{
		ID:            u.ID,
		Authenticated: true,
		Administrator: u.IsAdministrator(),
	}
}

// Decision is the outcome of a policy check. A deny carries the error the
// controller layer should surface: domain.ErrUnauthenticated when no identity
// was presented, domain.ErrForbidden when the identity lacks authority.
// A deny is never a not-found result; existence information is withheld by
// the lookup that precedes the object-level check, not by the policy.
type Decision struct {
	Allowed bool
	Reason  error
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// denyUnauthenticated rejects callers that presented no identity.
var denyUnauthenticated = Decision{Reason: domain.ErrUnauthenticated}

// denyForbidden rejects identities lacking ownership or administrator authority.
var denyForbidden = Decision{Reason: domain.ErrForbidden}

// CheckListingRequest is the request-level check for listing endpoints,
// evaluated before the target object is loaded. Listing the collection is
// open to everyone, anonymous callers included. Every other operation
// (detail view, create, update, delete) requires an authenticated identity.
func CheckListingRequest(id Identity, op Operation) Decision {
	if op == OpList {
		return Allow
	}
	if !id.Authenticated {
		return denyUnauthenticated
	}
	return Allow
}

// CheckReviewRequest is the request-level check for review endpoints.
// Reviews are stricter than listings: authentication is required for every
// operation, including list and other safe methods.
func CheckReviewRequest(id Identity, op Operation) Decision {
	if !id.Authenticated {
		return denyUnauthenticated
	}
	return Allow
}

// CheckListing is the object-level check for a loaded listing. Safe
// operations require an authenticated identity (anonymous detail view is
// always denied even though anonymous list is allowed). Update and delete
// require ownership or administrator authority, combined with a plain OR:
// administrator membership overrides an ownership mismatch, and ownership
// overrides lack of membership.
func CheckListing(id Identity, op Operation, listing *domain.Listing) Decision {
	if op.IsSafe() {
		if !id.Authenticated {
			return denyUnauthenticated
		}
		return Allow
	}
	return checkOwnership(id, listing.OwnerID)
}

// CheckReview is the object-level check for a loaded review. The shape
// mirrors CheckListing with the review's author as the owner.
func CheckReview(id Identity, op Operation, review *domain.Review) Decision {
	if op.IsSafe() {
		if !id.Authenticated {
			return denyUnauthenticated
		}
		return Allow
	}
	return checkOwnership(id, review.AuthorID)
}

// checkOwnership grants unsafe operations to the resource owner or to an
// administrator. Unauthenticated callers are rejected as unauthenticated,
// not forbidden, so the controller can distinguish 401 from 403.
func checkOwnership(id Identity, ownerID uuid.UUID) Decision {
	if !id.Authenticated {
		return denyUnauthenticated
	}
	if id.ID == ownerID || id.Administrator {
		return Allow
	}
	return denyForbidden
}
