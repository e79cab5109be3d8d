package commands

import (
	"github.com/spf13/cobra"

	"github.com/waTeim/mcp-base-cli/cmd/mcp-base/handlers"
)

// AddUser returns the command that grants a user access to the server client.
func AddUser() *cobra.Command {
	var opts handlers.AddUserOptions

	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Grant an Auth0 user access to the MCP server client",
		Long: `Add the server client id to an Auth0 user's allowed-clients metadata.

The client id defaults to the one recorded by setup-oidc. Adding a user who
already has access is a no-op.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AddUser(cmd.Context(), cmd.Flags(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address of the user (required)")
	cmd.Flags().StringVar(&opts.ConfigFile, "config-file", "", "Configuration file path (default: auth0-config.json)")
	cmd.Flags().String("domain", "", "Auth0 tenant domain (env: AUTH0_DOMAIN)")
	cmd.Flags().String("token", "", "Auth0 management API token (env: AUTH0_MGMT_TOKEN)")
	cmd.Flags().String("client-id", "", "Client id to grant (default: saved server client)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
