// Package organization models the tenant side of the engine: organizations,
// roles with hierarchical authority, memberships, and the users behind them.
//
// It owns two of the core authorization decisions: the role hierarchy gate
// (which roles an actor may assign to others) and the membership resolver
// (which organization context a user operates in). All gating reads work from
// freshly loaded role records; client-supplied role snapshots are never
// trusted.
package organization
