// Package pg provides PostgreSQL plumbing shared by every storage layer:
// pool configuration from the environment, connection with retry, goose
// migrations bridged onto the pgx pool, error classification helpers, and
// the Querier interface that lets the same query code run against a pool or
// inside a transaction.
package pg
