package commands

import (
	"github.com/spf13/cobra"

	"github.com/waTeim/mcp-base-cli/cmd/mcp-base/handlers"
)

// SetupOIDC returns the command that configures the identity provider.
func SetupOIDC() *cobra.Command {
	var opts handlers.SetupOIDCOptions

	cmd := &cobra.Command{
		Use:   "setup-oidc",
		Short: "Configure an OIDC provider for the MCP server",
		Long: `Configure the identity provider the MCP server authenticates against.

With --provider auth0 (the default) the command drives the Auth0 management
API: it creates or reuses the API resource server, the server client, the
client grant and a machine-to-machine management client whose id is recorded
so later runs can fetch tokens from AUTH0_MGMT_CLIENT_SECRET. Re-running is
safe; existing resources are reused and only divergent scopes are patched.
Client secrets are printed once on creation and never written to disk.

With --provider generic (or dex, keycloak, okta) the provider is assumed to
be configured out-of-band; the command validates the issuer's discovery
document and records the non-secret settings.

Values resolve per field: explicit flag, then environment variable
(AUTH0_DOMAIN, AUTH0_MGMT_TOKEN, OIDC_ISSUER, ...), then the saved
configuration file, then the documented default.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SetupOIDC(cmd.Context(), cmd.Flags(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Provider, "provider", "auth0", "Identity provider (auth0, generic, dex, keycloak, okta)")
	cmd.Flags().StringVar(&opts.ConfigFile, "config-file", "", "Configuration file path (default: auth0-config.json or oidc-config.json)")
	cmd.Flags().StringVar(&opts.ClientName, "client-name", "", "Name of the server client (default: derived from API name)")
	cmd.Flags().BoolVar(&opts.NoSaveConfig, "no-save-config", false, "Do not write the configuration file")
	cmd.Flags().BoolVar(&opts.RecreateClient, "recreate-client", false, "Delete and recreate the server client to rotate its secret")
	cmd.Flags().BoolVar(&opts.SkipGrant, "skip-grant", false, "Leave the client grant unmanaged")
	cmd.Flags().BoolVar(&opts.SkipMgmtClient, "skip-mgmt-client", false, "Do not create or record the management API client")
	cmd.Flags().BoolVar(&opts.SkipValidation, "skip-validation", false, "Skip issuer discovery validation (generic providers)")

	// Auth0 fields, resolved flag > env > stored file.
	cmd.Flags().String("domain", "", "Auth0 tenant domain (env: AUTH0_DOMAIN)")
	cmd.Flags().String("token", "", "Auth0 management API token (env: AUTH0_MGMT_TOKEN)")
	cmd.Flags().String("api-name", "", "Display name of the API resource server (env: AUTH0_API_NAME)")
	cmd.Flags().String("api-identifier", "", "API identifier / audience URL (env: AUTH0_API_IDENTIFIER)")

	// Generic provider fields.
	cmd.Flags().String("issuer", "", "OIDC issuer URL (env: OIDC_ISSUER)")
	cmd.Flags().String("audience", "", "Expected token audience (env: OIDC_AUDIENCE)")
	cmd.Flags().String("client-id", "", "Pre-registered client id (env: OIDC_CLIENT_ID)")

	return cmd
}
