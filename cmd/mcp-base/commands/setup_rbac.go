package commands

import (
	"github.com/spf13/cobra"

	"github.com/waTeim/mcp-base-cli/cmd/mcp-base/handlers"
)

// SetupRBAC returns the command that manages the server's RBAC objects.
func SetupRBAC() *cobra.Command {
	var opts handlers.SetupRBACOptions

	cmd := &cobra.Command{
		Use:   "setup-rbac",
		Short: "Create or remove RBAC for the MCP server",
		Long: `Create the service account, role and binding the MCP server runs with.

The default rules grant read-only access to core workload resources; supply
--rules-file with a JSON array of {api_groups, resources, verbs} objects to
override them. --scope cluster switches to a ClusterRole and
ClusterRoleBinding. --delete tears the objects down; deleting objects that
are already gone succeeds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SetupRBAC(cmd.Context(), cmd.Flags(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ServiceAccount, "service-account", "", "Service account name (default: <app-name>-server)")
	cmd.Flags().StringVar(&opts.Scope, "scope", handlers.ScopeCluster, "RBAC scope: cluster or namespace")
	cmd.Flags().StringVar(&opts.RulesFile, "rules-file", "", "JSON file with custom policy rules")
	cmd.Flags().StringVar(&opts.Kubeconfig, "kubeconfig", "", "Path to kubeconfig (default: standard loading rules)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the plan without touching the cluster")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "Remove the RBAC objects instead of creating them")

	cmd.Flags().StringP("namespace", "n", "", "Target namespace (env: MCP_NAMESPACE, default: default)")
	cmd.Flags().String("app-name", "", "Application label value (env: MCP_APP_NAME, default: mcp-server)")

	return cmd
}
