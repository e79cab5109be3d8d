// Package auth0 reconciles an Auth0 tenant into the state an MCP server
// deployment needs: a resource server for the API, a server client, and a
// client grant binding the two.
//
// Every operation is independently idempotent so an interrupted or failed
// run can simply be re-run. Nothing here retries; a non-2xx response from
// the management API aborts the reconciliation with an APIError carrying
// the HTTP status and response body.
package auth0
