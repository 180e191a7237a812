package permission

import (
	"slices"
	"sort"
)

// RoleView is the minimal role shape the resolver needs. Domain role types
// implement it; methods must be nil-receiver safe so a detached role fails
// closed instead of panicking.
type RoleView interface {
	// OwnsOrganization reports whether the role is the organization-owner role.
	OwnsOrganization() bool
	// PermissionSlugs returns the permission slugs directly granted to the role.
	PermissionSlugs() []string
}

// Set is an immutable resolved permission set: either the wildcard held by
// the organization-owner role, or an explicit collection of slugs.
type Set struct {
	wildcard bool
	slugs    map[string]struct{}
}

// Wildcard returns the universal set. Every membership check against it
// succeeds.
func Wildcard() Set {
	return Set{wildcard: true}
}

// Explicit returns a set containing exactly the given slugs. Empty and
// duplicate slugs are dropped.
func Explicit(slugs ...string) Set {
	m := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		if s == "" {
			continue
		}
		m[s] = struct{}{}
	}
	return Set{slugs: m}
}

// Resolve maps a role to its effective permission set.
//
// The organization-owner role resolves to the wildcard set. A nil role
// (deleted or detached between read and check) resolves to the empty set:
// resolution fails closed, never open.
func Resolve(role RoleView) Set {
	if role == nil {
		return Explicit()
	}
	if role.OwnsOrganization() {
		return Wildcard()
	}
	return Explicit(role.PermissionSlugs()...)
}

// IsWildcard reports whether the set is the universal wildcard set.
func (s Set) IsWildcard() bool {
	return s.wildcard
}

// Has reports whether the set grants the given permission slug.
func (s Set) Has(slug string) bool {
	if s.wildcard {
		return true
	}
	_, ok := s.slugs[slug]
	return ok
}

// HasAny reports whether the set grants at least one of the given slugs.
// An empty argument list yields false for explicit sets.
func (s Set) HasAny(slugs ...string) bool {
	if s.wildcard {
		return true
	}
	return slices.ContainsFunc(slugs, s.Has)
}

// HasAll reports whether the set grants every one of the given slugs.
func (s Set) HasAll(slugs ...string) bool {
	if s.wildcard {
		return true
	}
	for _, slug := range slugs {
		if !s.Has(slug) {
			return false
		}
	}
	return true
}

// Len returns the number of explicit slugs. The wildcard set reports zero.
func (s Set) Len() int {
	return len(s.slugs)
}

// Slugs returns the explicit slugs in sorted order. The wildcard set returns
// nil since its contents are not enumerable.
func (s Set) Slugs() []string {
	if s.wildcard || len(s.slugs) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.slugs))
	for slug := range s.slugs {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
