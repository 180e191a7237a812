// Package slug derives URL-safe identifiers from human-readable names.
// Organization slugs are generated from the organization name at
// registration time, optionally with a random suffix to sidestep collisions.
package slug
