package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"

	"github.com/waTeim/mcp-base-cli/internal/auth0"
	"github.com/waTeim/mcp-base-cli/internal/config"
	"github.com/waTeim/mcp-base-cli/internal/helmvalues"
	"github.com/waTeim/mcp-base-cli/internal/oidcdiscovery"
)

// setupOIDCFlags mirrors the flag set the setup-oidc command registers.
func setupOIDCFlags(t *testing.T, values map[string]string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("setup-oidc", pflag.ContinueOnError)
	for _, name := range []string{"domain", "token", "api-name", "api-identifier", "issuer", "audience", "client-id"} {
		flags.String(name, "", "")
	}
	for name, value := range values {
		require.NoError(t, flags.Set(name, value))
	}
	return flags
}

// fakeManagementAPI answers just enough of the management API for a full
// reconcile: empty tenant, every created object echoed back with ids.
func fakeManagementAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/resource-servers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[]`)
			return
		}
		var rs auth0.ResourceServer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rs))
		rs.ID = "rs-1"
		require.NoError(t, json.NewEncoder(w).Encode(rs))
	})
	var clientCount int
	mux.HandleFunc("/clients", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[]`)
			return
		}
		var app auth0.Application
		require.NoError(t, json.NewDecoder(r.Body).Decode(&app))
		clientCount++
		app.ClientID = fmt.Sprintf("client-%d", clientCount)
		app.ClientSecret = fmt.Sprintf("fresh-secret-%d", clientCount)
		require.NoError(t, json.NewEncoder(w).Encode(app))
	})
	mux.HandleFunc("/client-grants", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func withFakeAuth0(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := newAuth0Client
	newAuth0Client = func(_, token string) *auth0.Client {
		return auth0.NewClientWithBaseURL(srv.URL, token, srv.Client())
	}
	t.Cleanup(func() { newAuth0Client = orig })
}

func TestSetupOIDCAuth0(t *testing.T) {
	srv := fakeManagementAPI(t)
	withFakeAuth0(t, srv)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "auth0-config.json")

	flags := setupOIDCFlags(t, map[string]string{
		"domain":         "tenant.auth0.com",
		"token":          "mgmt-token",
		"api-identifier": "https://mcp.example.com/mcp",
	})

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "auth0",
		ConfigFile: configPath,
	})
	require.NoError(t, err)

	stored, err := config.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "auth0", stored.Provider)
	assert.Equal(t, "tenant.auth0.com", stored.Domain)
	assert.Equal(t, "https://mcp.example.com/mcp", stored.Audience)
	assert.Equal(t, "client-1", stored.ClientID)
	assert.Equal(t, "client-2", stored.MgmtClientID, "the management client id is recorded for token auto-fetch")

	// The raw file must not contain either secret anywhere.
	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "fresh-secret")

	// Helm values land next to the config file.
	_, err = os.Stat(filepath.Join(dir, "auth0-values.yaml"))
	assert.NoError(t, err)
}

func TestSetupOIDCAuth0MissingDomain(t *testing.T) {
	flags := setupOIDCFlags(t, nil)

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "auth0",
		ConfigFile: filepath.Join(t.TempDir(), "auth0-config.json"),
	})
	require.Error(t, err)

	var missing *config.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Fields, "domain")
}

func TestSetupOIDCAuth0NoSaveConfig(t *testing.T) {
	srv := fakeManagementAPI(t)
	withFakeAuth0(t, srv)

	configPath := filepath.Join(t.TempDir(), "auth0-config.json")
	flags := setupOIDCFlags(t, map[string]string{
		"domain": "tenant.auth0.com",
		"token":  "mgmt-token",
	})

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:     "auth0",
		ConfigFile:   configPath,
		NoSaveConfig: true,
	})
	require.NoError(t, err)

	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err), "config file must not be written with --no-save-config")
}

func TestSetupOIDCAuth0SkipMgmtClient(t *testing.T) {
	srv := fakeManagementAPI(t)
	withFakeAuth0(t, srv)

	configPath := filepath.Join(t.TempDir(), "auth0-config.json")
	flags := setupOIDCFlags(t, map[string]string{
		"domain": "tenant.auth0.com",
		"token":  "mgmt-token",
	})

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:       "auth0",
		ConfigFile:     configPath,
		SkipMgmtClient: true,
	})
	require.NoError(t, err)

	stored, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Empty(t, stored.MgmtClientID)
}

func TestSetupOIDCAuth0SecondRunFetchesManagementToken(t *testing.T) {
	srv := fakeManagementAPI(t)
	withFakeAuth0(t, srv)

	origFetch := fetchManagementToken
	var fetchedFor string
	fetchManagementToken = func(_ context.Context, domain, clientID, clientSecret string) (string, error) {
		assert.Equal(t, "tenant.auth0.com", domain)
		assert.Equal(t, "mgmt-secret", clientSecret)
		fetchedFor = clientID
		return "fetched-token", nil
	}
	t.Cleanup(func() { fetchManagementToken = origFetch })

	configPath := filepath.Join(t.TempDir(), "auth0-config.json")

	// First run with a pasted token records the management client id.
	err := SetupOIDC(context.Background(), setupOIDCFlags(t, map[string]string{
		"domain": "tenant.auth0.com",
		"token":  "mgmt-token",
	}), SetupOIDCOptions{Provider: "auth0", ConfigFile: configPath})
	require.NoError(t, err)

	stored, err := config.Load(configPath)
	require.NoError(t, err)
	require.NotEmpty(t, stored.MgmtClientID)

	// Second run passes no token; the recorded client plus the env secret
	// is exchanged for a fresh one.
	t.Setenv(mgmtClientSecretEnv, "mgmt-secret")
	err = SetupOIDC(context.Background(), setupOIDCFlags(t, map[string]string{
		"domain": "tenant.auth0.com",
	}), SetupOIDCOptions{Provider: "auth0", ConfigFile: configPath})
	require.NoError(t, err)
	assert.Equal(t, stored.MgmtClientID, fetchedFor)
}

func TestSetupOIDCValuesUseMakeEnvImage(t *testing.T) {
	srv := fakeManagementAPI(t)
	withFakeAuth0(t, srv)

	dir := t.TempDir()
	env := "REGISTRY=registry.example.com\nIMAGE_NAME=mcp-server\nTAG=v2.0.1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "make.env"), []byte(env), 0o644))

	flags := setupOIDCFlags(t, map[string]string{
		"domain": "tenant.auth0.com",
		"token":  "mgmt-token",
	})
	require.NoError(t, SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "auth0",
		ConfigFile: filepath.Join(dir, "auth0-config.json"),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "auth0-values.yaml"))
	require.NoError(t, err)

	var values helmvalues.Values
	require.NoError(t, yaml.Unmarshal(data, &values))
	assert.Equal(t, "registry.example.com/mcp-server", values.Image.Repository)
	assert.Equal(t, "v2.0.1", values.Image.Tag)
	assert.Equal(t, "IfNotPresent", values.Image.PullPolicy, "release tags are cacheable")
}

func TestSetupOIDCGeneric(t *testing.T) {
	orig := validateIssuer
	validateIssuer = func(_ context.Context, issuer string) (*oidcdiscovery.Endpoints, error) {
		return &oidcdiscovery.Endpoints{
			Issuer:                issuer,
			AuthorizationEndpoint: issuer + "/auth",
			TokenEndpoint:         issuer + "/token",
			JWKSURI:               issuer + "/keys",
		}, nil
	}
	t.Cleanup(func() { validateIssuer = orig })

	dir := t.TempDir()
	configPath := filepath.Join(dir, "oidc-config.json")
	flags := setupOIDCFlags(t, map[string]string{
		"issuer":    "https://dex.example.com/",
		"audience":  "https://mcp.example.com/mcp",
		"client-id": "mcp-client",
	})

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "dex",
		ConfigFile: configPath,
	})
	require.NoError(t, err)

	stored, err := config.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "dex", stored.Provider)
	assert.Equal(t, "https://dex.example.com", stored.Issuer, "trailing slash stripped")
	assert.Equal(t, "https://dex.example.com/token", stored.TokenEndpoint)

	_, err = os.Stat(filepath.Join(dir, "oidc-values.yaml"))
	assert.NoError(t, err)
}

func TestSetupOIDCGenericInvalidIssuer(t *testing.T) {
	orig := validateIssuer
	validateIssuer = func(_ context.Context, issuer string) (*oidcdiscovery.Endpoints, error) {
		return nil, &oidcdiscovery.DiscoveryError{Issuer: issuer, Reason: "discovery document missing jwks_uri"}
	}
	t.Cleanup(func() { validateIssuer = orig })

	flags := setupOIDCFlags(t, map[string]string{
		"issuer":    "https://broken.example.com",
		"audience":  "https://mcp.example.com/mcp",
		"client-id": "mcp-client",
	})

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "generic",
		ConfigFile: filepath.Join(t.TempDir(), "oidc-config.json"),
	})

	var discErr *oidcdiscovery.DiscoveryError
	require.ErrorAs(t, err, &discErr)
}

func TestSetupOIDCGenericMissingFieldsListedTogether(t *testing.T) {
	flags := setupOIDCFlags(t, nil)

	err := SetupOIDC(context.Background(), flags, SetupOIDCOptions{
		Provider:   "generic",
		ConfigFile: filepath.Join(t.TempDir(), "oidc-config.json"),
	})

	var missing *config.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"issuer", "audience", "client-id"}, missing.Fields)
}

func TestSetupOIDCUnknownProvider(t *testing.T) {
	err := SetupOIDC(context.Background(), setupOIDCFlags(t, nil), SetupOIDCOptions{Provider: "okta2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestResolveManagementTokenFetchesFromMgmtClient(t *testing.T) {
	orig := fetchManagementToken
	fetchManagementToken = func(_ context.Context, domain, clientID, clientSecret string) (string, error) {
		assert.Equal(t, "tenant.auth0.com", domain)
		assert.Equal(t, "mgmt-123", clientID)
		assert.Equal(t, "mgmt-secret", clientSecret)
		return "fetched-token", nil
	}
	t.Cleanup(func() { fetchManagementToken = orig })

	stored := &config.Stored{MgmtClientID: "mgmt-123"}
	res := config.NewResolver(nil, stored)
	res.LookupEnv = func(key string) string {
		if key == mgmtClientSecretEnv {
			return "mgmt-secret"
		}
		return ""
	}

	token, err := resolveManagementToken(context.Background(), res, stored, "tenant.auth0.com")
	require.NoError(t, err)
	assert.Equal(t, "fetched-token", token)
}

func TestResolveManagementTokenMissing(t *testing.T) {
	res := config.NewResolver(nil, nil)
	res.LookupEnv = func(string) string { return "" }

	_, err := resolveManagementToken(context.Background(), res, nil, "tenant.auth0.com")

	var missing *config.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"token"}, missing.Fields)
}
