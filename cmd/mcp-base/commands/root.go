// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the mcp-base CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-base",
		Short: "Configure OIDC providers and provision MCP server deployments",
		Long: `mcp-base prepares everything an MCP server deployment needs before the
chart is installed: it configures the identity provider (Auth0 directly, or
validates a pre-configured Dex/Keycloak/Okta issuer), generates signing keys,
writes the Kubernetes credential secrets, and sets up RBAC.`,
	}

	cmd.AddCommand(SetupOIDC())
	cmd.AddCommand(CreateSecrets())
	cmd.AddCommand(SetupRBAC())
	cmd.AddCommand(AddUser())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
