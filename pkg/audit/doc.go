// Package audit records immutable entries for every state transition the
// engine performs: who did what to what, when, and what changed.
//
// Entries are write-once. The package exposes a Storage interface with an
// in-memory implementation for tests and a PostgreSQL implementation that
// writes through a pg.Querier, so services can insert audit rows inside the
// same transaction as the state change they document. The standalone
// Recorder wraps a Storage for callers outside a transaction.
//
//	entry := audit.NewEntry("invitation.cancel",
//	    audit.WithOrganization(orgID),
//	    audit.WithActor(actorID),
//	    audit.WithEntity("invitation", inv.ID.String()),
//	    audit.WithOldValues(map[string]any{"status": "pending"}),
//	    audit.WithNewValues(map[string]any{"status": "cancelled"}),
//	)
package audit
