// Package invitation implements the invitation lifecycle: creation behind a
// permission and role-hierarchy gate, token-based preview and acceptance,
// cancellation, and history. Invitations expire by timestamp; expiry is
// derived at read time rather than by a background job, and stale pending
// rows are swept lazily when a new invitation for the same address arrives.
package invitation
