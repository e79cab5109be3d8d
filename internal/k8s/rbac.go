package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultRules grants the read-only access an MCP server needs to answer
// tool calls against the cluster.
func DefaultRules() []rbacv1.PolicyRule {
	readVerbs := []string{"get", "list", "watch"}
	return []rbacv1.PolicyRule{
		{
			APIGroups: []string{""},
			Resources: []string{"pods", "pods/log", "services", "configmaps", "secrets", "namespaces"},
			Verbs:     readVerbs,
		},
		{
			APIGroups: []string{"apps"},
			Resources: []string{"deployments", "statefulsets", "daemonsets", "replicasets"},
			Verbs:     readVerbs,
		},
		{
			APIGroups: []string{"batch"},
			Resources: []string{"jobs", "cronjobs"},
			Verbs:     readVerbs,
		},
	}
}

// RuleSpec is one entry of an operator-supplied rules file.
type RuleSpec struct {
	APIGroups []string `json:"api_groups"`
	Resources []string `json:"resources"`
	Verbs     []string `json:"verbs"`
}

// LoadRulesFile reads a JSON array of rules and converts it to policy rules.
// Every entry must name at least one resource and one verb.
func LoadRulesFile(path string) ([]rbacv1.PolicyRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var specs []RuleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	rules := make([]rbacv1.PolicyRule, 0, len(specs))
	for i, spec := range specs {
		if len(spec.Resources) == 0 {
			return nil, fmt.Errorf("rules file %s: rule %d has no resources", path, i)
		}
		if len(spec.Verbs) == 0 {
			return nil, fmt.Errorf("rules file %s: rule %d has no verbs", path, i)
		}
		if spec.APIGroups == nil {
			spec.APIGroups = []string{""}
		}
		rules = append(rules, rbacv1.PolicyRule{
			APIGroups: spec.APIGroups,
			Resources: spec.Resources,
			Verbs:     spec.Verbs,
		})
	}
	return rules, nil
}

// EnsureServiceAccount creates the service account when absent.
func (c *Client) EnsureServiceAccount(ctx context.Context, namespace, name, appName string) (bool, error) {
	sa := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels(appName, "rbac"),
		},
	}
	_, err := c.clientset.CoreV1().ServiceAccounts(namespace).Create(ctx, sa, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create service account %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// EnsureRole creates a namespaced role when absent.
func (c *Client) EnsureRole(ctx context.Context, namespace, name, appName string, rules []rbacv1.PolicyRule) (bool, error) {
	role := &rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels(appName, "rbac"),
		},
		Rules: rules,
	}
	_, err := c.clientset.RbacV1().Roles(namespace).Create(ctx, role, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create role %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// EnsureClusterRole creates a cluster role when absent.
func (c *Client) EnsureClusterRole(ctx context.Context, name, appName string, rules []rbacv1.PolicyRule) (bool, error) {
	role := &rbacv1.ClusterRole{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels(appName, "rbac"),
		},
		Rules: rules,
	}
	_, err := c.clientset.RbacV1().ClusterRoles().Create(ctx, role, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create cluster role %s: %w", name, err)
	}
	return true, nil
}

// EnsureRoleBinding binds the service account to a namespaced role.
func (c *Client) EnsureRoleBinding(ctx context.Context, namespace, name, roleName, serviceAccount, appName string) (bool, error) {
	binding := &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels(appName, "rbac"),
		},
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      serviceAccount,
			Namespace: namespace,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     roleName,
		},
	}
	_, err := c.clientset.RbacV1().RoleBindings(namespace).Create(ctx, binding, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create role binding %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// EnsureClusterRoleBinding binds the service account to a cluster role.
func (c *Client) EnsureClusterRoleBinding(ctx context.Context, name, roleName, serviceAccount, saNamespace, appName string) (bool, error) {
	binding := &rbacv1.ClusterRoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels(appName, "rbac"),
		},
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      serviceAccount,
			Namespace: saNamespace,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     roleName,
		},
	}
	_, err := c.clientset.RbacV1().ClusterRoleBindings().Create(ctx, binding, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create cluster role binding %s: %w", name, err)
	}
	return true, nil
}

// DeleteServiceAccount removes the service account; absence is success.
func (c *Client) DeleteServiceAccount(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().ServiceAccounts(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete service account %s/%s: %w", namespace, name, err)
	}
	return nil
}

// DeleteRole removes a namespaced role; absence is success.
func (c *Client) DeleteRole(ctx context.Context, namespace, name string) error {
	err := c.clientset.RbacV1().Roles(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete role %s/%s: %w", namespace, name, err)
	}
	return nil
}

// DeleteClusterRole removes a cluster role; absence is success.
func (c *Client) DeleteClusterRole(ctx context.Context, name string) error {
	err := c.clientset.RbacV1().ClusterRoles().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete cluster role %s: %w", name, err)
	}
	return nil
}

// DeleteRoleBinding removes a namespaced binding; absence is success.
func (c *Client) DeleteRoleBinding(ctx context.Context, namespace, name string) error {
	err := c.clientset.RbacV1().RoleBindings(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete role binding %s/%s: %w", namespace, name, err)
	}
	return nil
}

// DeleteClusterRoleBinding removes a cluster binding; absence is success.
func (c *Client) DeleteClusterRoleBinding(ctx context.Context, name string) error {
	err := c.clientset.RbacV1().ClusterRoleBindings().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete cluster role binding %s: %w", name, err)
	}
	return nil
}
