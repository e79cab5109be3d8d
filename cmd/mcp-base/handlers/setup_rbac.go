package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	rbacv1 "k8s.io/api/rbac/v1"

	"github.com/waTeim/mcp-base-cli/internal/config"
	"github.com/waTeim/mcp-base-cli/internal/k8s"
	"github.com/waTeim/mcp-base-cli/internal/naming"
)

// RBAC scope values.
const (
	ScopeNamespace = "namespace"
	ScopeCluster   = "cluster"
)

// SetupRBACOptions carries the setup-rbac flags outside the resolved field
// set.
type SetupRBACOptions struct {
	ServiceAccount string
	Scope          string
	RulesFile      string
	Kubeconfig     string
	DryRun         bool
	Delete         bool
}

// SetupRBAC creates or tears down the service account and its role bindings.
func SetupRBAC(ctx context.Context, flags *pflag.FlagSet, opts SetupRBACOptions) error {
	if opts.Scope != ScopeNamespace && opts.Scope != ScopeCluster {
		return fmt.Errorf("invalid scope %q (must be %s or %s)", opts.Scope, ScopeNamespace, ScopeCluster)
	}

	res := config.NewResolver(flags, nil)
	namespace := res.Resolve("namespace")
	appName := res.Resolve("app-name")

	serviceAccount := opts.ServiceAccount
	if serviceAccount == "" {
		serviceAccount = naming.ServiceAccount(appName)
	}
	roleName := naming.Role(serviceAccount)
	bindingName := naming.RoleBinding(serviceAccount)

	rules := k8s.DefaultRules()
	if opts.RulesFile != "" {
		var err error
		rules, err = k8s.LoadRulesFile(opts.RulesFile)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d rules from %s\n", len(rules), opts.RulesFile)
	}

	if opts.DryRun {
		printRBACPlan(namespace, serviceAccount, roleName, bindingName, opts.Scope, opts.Delete, rules)
		return nil
	}

	client, err := newK8sClient(opts.Kubeconfig)
	if err != nil {
		return err
	}

	if opts.Delete {
		return deleteRBAC(ctx, client, namespace, serviceAccount, roleName, bindingName, opts.Scope)
	}
	return createRBAC(ctx, client, namespace, serviceAccount, roleName, bindingName, appName, opts.Scope, rules)
}

func createRBAC(ctx context.Context, client *k8s.Client, namespace, serviceAccount, roleName, bindingName, appName, scope string, rules []rbacv1.PolicyRule) error {
	created, err := client.EnsureNamespace(ctx, namespace)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created namespace %s\n", namespace)
	}

	created, err = client.EnsureServiceAccount(ctx, namespace, serviceAccount, appName)
	if err != nil {
		return err
	}
	reportEnsure("service account", namespace+"/"+serviceAccount, created)

	if scope == ScopeCluster {
		created, err = client.EnsureClusterRole(ctx, roleName, appName, rules)
		if err != nil {
			return err
		}
		reportEnsure("cluster role", roleName, created)

		created, err = client.EnsureClusterRoleBinding(ctx, bindingName, roleName, serviceAccount, namespace, appName)
		if err != nil {
			return err
		}
		reportEnsure("cluster role binding", bindingName, created)
	} else {
		created, err = client.EnsureRole(ctx, namespace, roleName, appName, rules)
		if err != nil {
			return err
		}
		reportEnsure("role", namespace+"/"+roleName, created)

		created, err = client.EnsureRoleBinding(ctx, namespace, bindingName, roleName, serviceAccount, appName)
		if err != nil {
			return err
		}
		reportEnsure("role binding", namespace+"/"+bindingName, created)
	}

	printSummaryStyled("RBAC for "+appName, []summaryEntry{
		{Name: "service account", Value: namespace + "/" + serviceAccount},
		{Name: "role", Value: roleName},
		{Name: "binding", Value: bindingName},
		{Name: "scope", Value: scope},
	})
	return nil
}

// deleteRBAC removes bindings before roles so no dangling grants survive a
// partial teardown. Absent objects are fine.
func deleteRBAC(ctx context.Context, client *k8s.Client, namespace, serviceAccount, roleName, bindingName, scope string) error {
	if scope == ScopeCluster {
		if err := client.DeleteClusterRoleBinding(ctx, bindingName); err != nil {
			return err
		}
		if err := client.DeleteClusterRole(ctx, roleName); err != nil {
			return err
		}
	} else {
		if err := client.DeleteRoleBinding(ctx, namespace, bindingName); err != nil {
			return err
		}
		if err := client.DeleteRole(ctx, namespace, roleName); err != nil {
			return err
		}
	}
	if err := client.DeleteServiceAccount(ctx, namespace, serviceAccount); err != nil {
		return err
	}

	fmt.Printf("Removed RBAC objects for %s/%s\n", namespace, serviceAccount)
	return nil
}

func reportEnsure(kind, name string, created bool) {
	if created {
		fmt.Printf("Created %s %s\n", kind, name)
	} else {
		fmt.Printf("%s %s already exists\n", kind, name)
	}
}

func printRBACPlan(namespace, serviceAccount, roleName, bindingName, scope string, deletion bool, rules []rbacv1.PolicyRule) {
	verb := "create"
	if deletion {
		verb = "delete"
	}
	fmt.Printf("Dry run: would %s the following objects:\n", verb)
	fmt.Printf("  ServiceAccount  %s/%s\n", namespace, serviceAccount)
	if scope == ScopeCluster {
		fmt.Printf("  ClusterRole     %s\n", roleName)
		fmt.Printf("  ClusterRoleBinding %s\n", bindingName)
	} else {
		fmt.Printf("  Role            %s/%s\n", namespace, roleName)
		fmt.Printf("  RoleBinding     %s/%s\n", namespace, bindingName)
	}
	if !deletion {
		for _, rule := range rules {
			fmt.Printf("  rule: groups=%v resources=%v verbs=%v\n", rule.APIGroups, rule.Resources, rule.Verbs)
		}
	}
}
