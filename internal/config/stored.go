package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default configuration file names. Which one exists determines the
// provider path create-secrets takes.
const (
	Auth0File = "auth0-config.json"
	OIDCFile  = "oidc-config.json"
)

// Stored is the on-disk subset of the effective configuration.
//
// The struct deliberately has no secret members: credentials cannot end up
// in the file because there is no field to carry them.
type Stored struct {
	Provider string `json:"provider,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Issuer   string `json:"issuer,omitempty"`
	Audience string `json:"audience,omitempty"`
	APIName  string `json:"api_name,omitempty"`

	// ClientID is the server client used by the MCP server itself.
	ClientID string `json:"client_id,omitempty"`
	// MgmtClientID is the machine-to-machine management client (Auth0 only).
	MgmtClientID string `json:"mgmt_client_id,omitempty"`

	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	TokenEndpoint         string `json:"token_endpoint,omitempty"`
	JWKSURI               string `json:"jwks_uri,omitempty"`

	Namespace   string `json:"namespace,omitempty"`
	ReleaseName string `json:"release_name,omitempty"`
}

// IsAuth0 reports whether the stored configuration describes an Auth0
// tenant. Older files written before the provider field existed are
// recognized by the presence of a domain.
func (s *Stored) IsAuth0() bool {
	if s == nil {
		return false
	}
	return s.Provider == "auth0" || (s.Provider == "" && s.Domain != "")
}

// Load reads a stored configuration file. A missing file is not an error;
// it returns (nil, nil) so callers can distinguish "no saved state yet"
// from a corrupt file.
func Load(path string) (*Stored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var s Stored
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the stored configuration as a full-file overwrite. Concurrent
// invocations are not coordinated; these are operator-driven single-machine
// commands and last writer wins.
func Save(path string, s *Stored) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Detect locates the configuration file in dir by presence, preferring the
// generic OIDC file over the Auth0 one. Returns the path of the file found.
func Detect(dir string) (string, error) {
	for _, name := range []string{OIDCFile, Auth0File} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no configuration file found in %s (looked for %s and %s); run 'mcp-base setup-oidc' first", dir, OIDCFile, Auth0File)
}
