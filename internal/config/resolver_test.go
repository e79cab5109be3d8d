package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("domain", "", "")
	flags.String("api-identifier", "", "")
	flags.String("namespace", "", "")
	flags.String("client-secret", "", "")
	return flags
}

func newTestResolver(flags *pflag.FlagSet, stored *Stored, env map[string]string) *Resolver {
	r := NewResolver(flags, stored)
	r.LookupEnv = func(key string) string { return env[key] }
	return r
}

func TestResolvePrecedence(t *testing.T) {
	stored := &Stored{Domain: "stored.auth0.com"}
	env := map[string]string{"AUTH0_DOMAIN": "env.auth0.com"}

	t.Run("cli flag wins over env and stored", func(t *testing.T) {
		flags := newTestFlags(t)
		require.NoError(t, flags.Parse([]string{"--domain", "cli.auth0.com"}))

		r := newTestResolver(flags, stored, env)
		assert.Equal(t, "cli.auth0.com", r.Resolve("domain"))
	})

	t.Run("env wins over stored when flag unset", func(t *testing.T) {
		r := newTestResolver(newTestFlags(t), stored, env)
		assert.Equal(t, "env.auth0.com", r.Resolve("domain"))
	})

	t.Run("stored wins when flag and env unset", func(t *testing.T) {
		r := newTestResolver(newTestFlags(t), stored, nil)
		assert.Equal(t, "stored.auth0.com", r.Resolve("domain"))
	})

	t.Run("default applies when all tiers unset", func(t *testing.T) {
		r := newTestResolver(newTestFlags(t), nil, nil)
		assert.Equal(t, "default", r.Resolve("namespace"))
	})

	t.Run("unset flag does not shadow env", func(t *testing.T) {
		// Parsing without --domain leaves the flag unchanged; the empty
		// flag value must not win over the environment.
		flags := newTestFlags(t)
		require.NoError(t, flags.Parse(nil))

		r := newTestResolver(flags, stored, env)
		assert.Equal(t, "env.auth0.com", r.Resolve("domain"))
	})
}

func TestResolveMixedSources(t *testing.T) {
	// Stored config supplies the domain; an env var overrides the api
	// identifier; the CLI supplies nothing else.
	stored := &Stored{Domain: "t.auth0.com", Audience: "https://old/mcp"}
	env := map[string]string{"AUTH0_API_IDENTIFIER": "https://x/mcp"}

	r := newTestResolver(newTestFlags(t), stored, env)

	assert.Equal(t, "t.auth0.com", r.Resolve("domain"))
	assert.Equal(t, "https://x/mcp", r.Resolve("api-identifier"))
}

func TestRequireListsAllMissingFields(t *testing.T) {
	r := newTestResolver(newTestFlags(t), nil, nil)

	_, err := r.Require("domain", "token", "api-identifier")
	require.Error(t, err)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"api-identifier", "domain", "token"}, missing.Fields)
	assert.Contains(t, missing.Error(), "AUTH0_DOMAIN")
	assert.Contains(t, missing.Error(), "AUTH0_MGMT_TOKEN")
}

func TestRequireReturnsResolvedValues(t *testing.T) {
	stored := &Stored{Domain: "t.auth0.com"}
	env := map[string]string{"AUTH0_MGMT_TOKEN": "tok"}

	r := newTestResolver(newTestFlags(t), stored, env)

	values, err := r.Require("domain", "token")
	require.NoError(t, err)
	assert.Equal(t, "t.auth0.com", values["domain"])
	assert.Equal(t, "tok", values["token"])
}

func TestResolveAll(t *testing.T) {
	stored := &Stored{Namespace: "mcp", ReleaseName: "my-mcp"}
	r := newTestResolver(newTestFlags(t), stored, nil)

	values := r.ResolveAll("namespace", "release-name", "app-name")
	assert.Equal(t, "mcp", values["namespace"])
	assert.Equal(t, "my-mcp", values["release-name"])
	assert.Equal(t, "mcp-server", values["app-name"])
}

func TestSecretFieldsNeverReadFromStored(t *testing.T) {
	// Even a hand-edited config file cannot inject secrets: the resolver
	// has no stored accessor for token or client-secret.
	r := newTestResolver(newTestFlags(t), &Stored{Domain: "t.auth0.com"}, nil)

	assert.Empty(t, r.Resolve("token"))
	assert.Empty(t, r.Resolve("client-secret"))
}
