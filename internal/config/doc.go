// Package config manages the persisted provider configuration and the
// precedence rules that merge it with CLI flags and environment variables.
//
// Configuration lives in a small flat JSON file (auth0-config.json or
// oidc-config.json) that holds only non-secret fields. Secrets such as
// management tokens and client secrets are never written to disk; they are
// supplied per invocation via flags or environment variables.
package config
