package commands

import (
	"github.com/spf13/cobra"

	"github.com/waTeim/mcp-base-cli/cmd/mcp-base/handlers"
)

// CreateSecrets returns the command that writes the deployment secrets.
func CreateSecrets() *cobra.Command {
	var opts handlers.CreateSecretsOptions

	cmd := &cobra.Command{
		Use:   "create-secrets",
		Short: "Create the Kubernetes secrets for an MCP server release",
		Long: `Create the credentials secret and the JWT signing key secret for a release.

The provider settings come from the saved configuration file (oidc-config.json
is preferred over auth0-config.json when both exist). The client secret is
never stored in that file, so pass it via --client-secret or
OIDC_CLIENT_SECRET.

Existing secrets are left untouched unless --force is given, which deletes
and recreates them. --dry-run prints the objects without contacting the
cluster.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.CreateSecrets(cmd.Context(), cmd.Flags(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config-file", "", "Configuration file path (default: auto-detect)")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: standard loading rules)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the secrets without creating them")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace existing secrets")

	cmd.Flags().StringP("namespace", "n", "", "Target namespace (env: MCP_NAMESPACE, default: default)")
	cmd.Flags().String("release-name", "", "Helm release name the secrets belong to (env: MCP_RELEASE_NAME)")
	cmd.Flags().String("app-name", "", "Application label value (env: MCP_APP_NAME, default: mcp-server)")
	cmd.Flags().String("client-id", "", "OAuth client id (env: OIDC_CLIENT_ID)")
	cmd.Flags().String("client-secret", "", "OAuth client secret (env: OIDC_CLIENT_SECRET)")
	cmd.Flags().String("issuer", "", "OIDC issuer URL (env: OIDC_ISSUER)")
	cmd.Flags().String("audience", "", "Token audience (env: OIDC_AUDIENCE)")
	cmd.Flags().String("domain", "", "Auth0 tenant domain (env: AUTH0_DOMAIN)")

	return cmd
}
