// Package k8s provisions the cluster objects an MCP deployment needs:
// credential secrets, the service account and its RBAC bindings, and the
// target namespace.
package k8s

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ManagedBy labels every object this tool creates.
const ManagedBy = "mcp-base"

// Client wraps a Kubernetes clientset together with the namespace the
// kubeconfig context points at.
type Client struct {
	clientset        kubernetes.Interface
	contextNamespace string
}

// NewClient builds a client from the given kubeconfig path, falling back to
// the default loading rules and finally to in-cluster credentials.
func NewClient(kubeconfigPath string) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		restConfig, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	namespace, _, err := clientConfig.Namespace()
	if err != nil || namespace == "" {
		namespace = "default"
	}

	return &Client{clientset: clientset, contextNamespace: namespace}, nil
}

// NewFromInterface wraps an existing clientset. Tests use this with the fake
// clientset.
func NewFromInterface(clientset kubernetes.Interface, contextNamespace string) *Client {
	if contextNamespace == "" {
		contextNamespace = "default"
	}
	return &Client{clientset: clientset, contextNamespace: contextNamespace}
}

// ContextNamespace is the namespace the active kubeconfig context selects.
func (c *Client) ContextNamespace() string {
	return c.contextNamespace
}

func labels(appName, component string) map[string]string {
	return map[string]string{
		"app":                          appName,
		"app.kubernetes.io/managed-by": ManagedBy,
		"app.kubernetes.io/component":  component,
	}
}
