// Package naming provides consistent naming functions for the Kubernetes
// objects mcp-base manages.
//
// Secrets follow the pattern {release}-{component} so a Helm chart can
// reference them from the release name alone. RBAC objects derive from the
// service account name.
package naming
