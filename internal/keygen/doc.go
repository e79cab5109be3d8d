// Package keygen generates the symmetric keys an MCP server deployment
// needs: a JWT signing key and a Fernet storage encryption key.
//
// Both draw from crypto/rand. Keys are generated fresh per run; uniqueness
// is the only invariant.
package keygen
