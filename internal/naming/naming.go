package naming

import "fmt"

// Naming functions for deployment resources.
// All objects follow consistent patterns to enable easy identification
// and cleanup.

func Auth0CredentialsSecret(release string) string {
	return fmt.Sprintf("%s-auth0-credentials", release)
}

func OIDCCredentialsSecret(release string) string {
	return fmt.Sprintf("%s-oidc-credentials", release)
}

// CredentialsSecret picks the provider-specific credentials secret name.
func CredentialsSecret(release string, auth0 bool) string {
	if auth0 {
		return Auth0CredentialsSecret(release)
	}
	return OIDCCredentialsSecret(release)
}

func JWTKeySecret(release string) string {
	return fmt.Sprintf("%s-jwt-signing-key", release)
}

func ServiceAccount(app string) string {
	return fmt.Sprintf("%s-server", app)
}

func Role(serviceAccount string) string {
	return fmt.Sprintf("%s-role", serviceAccount)
}

func RoleBinding(serviceAccount string) string {
	return fmt.Sprintf("%s-binding", serviceAccount)
}
