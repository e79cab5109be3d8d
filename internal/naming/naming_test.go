package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	release := "my-mcp"
	sa := "mcp-server-server"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"auth0 credentials secret", Auth0CredentialsSecret(release), "my-mcp-auth0-credentials"},
		{"oidc credentials secret", OIDCCredentialsSecret(release), "my-mcp-oidc-credentials"},
		{"credentials secret auth0", CredentialsSecret(release, true), "my-mcp-auth0-credentials"},
		{"credentials secret generic", CredentialsSecret(release, false), "my-mcp-oidc-credentials"},
		{"jwt key secret", JWTKeySecret(release), "my-mcp-jwt-signing-key"},
		{"service account", ServiceAccount("mcp-server"), "mcp-server-server"},
		{"role", Role(sa), "mcp-server-server-role"},
		{"role binding", RoleBinding(sa), "mcp-server-server-binding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, expected %q", tt.got, tt.expected)
			}
		})
	}
}
