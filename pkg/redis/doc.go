// Package redis connects to a Redis server with retry and exposes a
// healthcheck helper. The dashboard module uses Redis as the bounded-TTL
// cache for resolved role permission sets.
package redis
