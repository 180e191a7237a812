// Package dashboard wires the organization and invitation services into an
// HTTP API. Authentication happens upstream; requests arrive with the
// authenticated user's id in the X-User-Id header, except for the public
// invitation token endpoints where the token itself is the credential.
package dashboard
