package helmvalues

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testInput() Input {
	return Input{
		Provider:        "auth0",
		Issuer:          "https://tenant.auth0.com",
		Audience:        "https://mcp.example.com/mcp",
		ClientID:        "client-123",
		ImageRepository: "registry.example.com/mcp-server",
		ImageTag:        "v1.2.3",
	}
}

func TestBuild(t *testing.T) {
	values := Build(testInput())

	assert.Equal(t, "registry.example.com/mcp-server", values.Image.Repository)
	assert.Equal(t, "https://tenant.auth0.com", values.OIDC.Issuer)
	assert.Equal(t, "https://mcp.example.com/mcp", values.OIDC.Audience)
	assert.Equal(t, "client-123", values.OIDC.ClientID)
	assert.Equal(t, "mcp.example.com", values.Ingress.Host)
	assert.True(t, values.Ingress.TLS.Enabled)
	assert.Equal(t, 1, values.ReplicaCount)
}

func TestBuildPullPolicy(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want string
	}{
		{"release tag", "v1.0.0", "IfNotPresent"},
		{"pre-release tag", "v2.1.0-beta.1", "IfNotPresent"},
		{"branch tag", "main-abc1234", "Always"},
		{"latest", "latest", "Always"},
		{"empty", "", "Always"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testInput()
			in.ImageTag = tt.tag
			assert.Equal(t, tt.want, Build(in).Image.PullPolicy)
		})
	}
}

func TestLoadMakeEnv(t *testing.T) {
	t.Run("reads image settings", func(t *testing.T) {
		dir := t.TempDir()
		env := "# build settings\nREGISTRY=registry.example.com\nIMAGE_NAME=mcp-server\nTAG=v1.2.3\nnot a pair\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "make.env"), []byte(env), 0o644))

		repo, tag := LoadMakeEnv(dir)
		assert.Equal(t, "registry.example.com/mcp-server", repo)
		assert.Equal(t, "v1.2.3", tag)
	})

	t.Run("defaults for missing keys", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "make.env"), []byte("TAG=main-abc1234\n"), 0o644))

		repo, tag := LoadMakeEnv(dir)
		assert.Equal(t, "your-registry.example.com/mcp-server", repo)
		assert.Equal(t, "main-abc1234", tag)
	})

	t.Run("missing file", func(t *testing.T) {
		repo, tag := LoadMakeEnv(t.TempDir())
		assert.Empty(t, repo)
		assert.Empty(t, tag)
	})
}

func TestIngressHost(t *testing.T) {
	assert.Equal(t, "mcp.example.com", IngressHost("https://mcp.example.com/mcp"))
	assert.Equal(t, "mcp-api.example.com", IngressHost("not a url"))
	assert.Equal(t, "mcp-api.example.com", IngressHost(""))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "auth0-values.yaml", FileName("auth0"))
	assert.Equal(t, "oidc-values.yaml", FileName("generic"))
	assert.Equal(t, "oidc-values.yaml", FileName("keycloak"))
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth0-values.yaml")
	require.NoError(t, Write(path, Build(testInput())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Helm values")

	var loaded Values
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, "client-123", loaded.OIDC.ClientID)
	assert.Equal(t, "mcp.example.com", loaded.Ingress.Host)
}
