// Package main is the entry point for the mcp-base CLI.
//
// mcp-base is a command-line tool that prepares MCP server deployments: it
// configures the OIDC identity provider (Auth0, or a pre-configured generic
// issuer such as Dex, Keycloak or Okta), provisions the Kubernetes
// credential secrets and signing keys, and manages the server's RBAC.
//
// Commands: setup-oidc, create-secrets, setup-rbac, add-user.
//
// For detailed usage information, run:
//
//	mcp-base --help
package main

import (
	"fmt"
	"os"

	"github.com/waTeim/mcp-base-cli/cmd/mcp-base/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
