// Package permission resolves a role into its effective permission set and
// answers membership questions against it.
//
// A resolved Set is one of two variants: the wildcard set held by an
// organization-owner role, or an explicit set of permission slugs. The
// wildcard is a marker, not an enumerated list, so it never drifts out of
// sync when the permission catalog grows.
//
// # Usage
//
//	set := permission.Resolve(role)
//	if !set.Has("invitations.create") {
//	    return ErrForbidden
//	}
//
// Resolution is a pure function over already-loaded role data and performs no
// I/O. A nil or detached role resolves to the empty set, never to the
// wildcard: unknown state fails closed. Staleness of a previously resolved
// Set after a role edit is the caller's concern; re-resolve on a bounded
// cache interval or on an explicit invalidation signal.
package permission
