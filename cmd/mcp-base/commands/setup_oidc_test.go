package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupOIDC(t *testing.T) {
	cmd := SetupOIDC()

	require.NotNil(t, cmd)
	assert.Equal(t, "setup-oidc", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestSetupOIDC_Flags(t *testing.T) {
	cmd := SetupOIDC()

	for _, name := range []string{
		"provider", "config-file", "client-name", "no-save-config",
		"recreate-client", "skip-grant", "skip-mgmt-client", "skip-validation",
		"domain", "token", "api-name", "api-identifier",
		"issuer", "audience", "client-id",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "Expected flag %s", name)
	}
}

func TestSetupOIDC_ProviderDefault(t *testing.T) {
	cmd := SetupOIDC()

	provider, err := cmd.Flags().GetString("provider")
	require.NoError(t, err)
	assert.Equal(t, "auth0", provider)
}
