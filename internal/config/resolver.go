package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// Field describes one resolvable configuration setting: the flag that can
// set it, the environment variable consulted next, where it lives in the
// stored file, and a documented default.
type Field struct {
	Name    string
	EnvVar  string
	Stored  func(*Stored) string
	Default string
}

// fields is the registry of every setting the resolver knows about, keyed
// by flag name. Environment variable names are fixed and match the ones the
// deployment documentation advertises.
var fields = map[string]Field{
	"domain": {
		Name:   "domain",
		EnvVar: "AUTH0_DOMAIN",
		Stored: func(s *Stored) string { return s.Domain },
	},
	"token": {
		Name:   "token",
		EnvVar: "AUTH0_MGMT_TOKEN",
		// Never stored: tokens are secrets.
	},
	"api-name": {
		Name:   "api-name",
		EnvVar: "AUTH0_API_NAME",
		Stored: func(s *Stored) string { return s.APIName },
	},
	"api-identifier": {
		Name:   "api-identifier",
		EnvVar: "AUTH0_API_IDENTIFIER",
		Stored: func(s *Stored) string { return s.Audience },
	},
	"issuer": {
		Name:   "issuer",
		EnvVar: "OIDC_ISSUER",
		Stored: func(s *Stored) string { return s.Issuer },
	},
	"audience": {
		Name:   "audience",
		EnvVar: "OIDC_AUDIENCE",
		Stored: func(s *Stored) string { return s.Audience },
	},
	"client-id": {
		Name:   "client-id",
		EnvVar: "OIDC_CLIENT_ID",
		Stored: func(s *Stored) string { return s.ClientID },
	},
	"client-secret": {
		Name:   "client-secret",
		EnvVar: "OIDC_CLIENT_SECRET",
		// Never stored: secrets stay out of the config file.
	},
	"namespace": {
		Name:    "namespace",
		EnvVar:  "MCP_NAMESPACE",
		Stored:  func(s *Stored) string { return s.Namespace },
		Default: "default",
	},
	"release-name": {
		Name:   "release-name",
		EnvVar: "MCP_RELEASE_NAME",
		Stored: func(s *Stored) string { return s.ReleaseName },
	},
	"app-name": {
		Name:    "app-name",
		EnvVar:  "MCP_APP_NAME",
		Default: "mcp-server",
	},
}

// MissingFieldsError reports every required field that resolved to unset,
// so the operator can fix them all in one pass.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	hints := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields {
		if f, ok := fields[name]; ok && f.EnvVar != "" {
			hints = append(hints, fmt.Sprintf("%s (--%s or %s)", name, name, f.EnvVar))
		} else {
			hints = append(hints, fmt.Sprintf("%s (--%s)", name, name))
		}
	}
	return "missing required configuration: " + strings.Join(hints, ", ")
}

// Resolver merges the three configuration tiers into effective values.
// Lookup order per field: explicitly supplied CLI flag, environment
// variable, stored file value, documented default.
type Resolver struct {
	Flags  *pflag.FlagSet
	Stored *Stored

	// LookupEnv defaults to os.Getenv; tests substitute it.
	LookupEnv func(string) string
}

// NewResolver builds a resolver over the given flag set and stored
// configuration. Either may be nil.
func NewResolver(flags *pflag.FlagSet, stored *Stored) *Resolver {
	return &Resolver{Flags: flags, Stored: stored, LookupEnv: os.Getenv}
}

// Resolve returns the effective value for a field, or the empty string when
// every tier is unset and the field has no default. Unknown field names
// resolve from the flag set only.
func (r *Resolver) Resolve(name string) string {
	f := fields[name]

	if r.Flags != nil && r.Flags.Changed(name) {
		if v, err := r.Flags.GetString(name); err == nil {
			return v
		}
	}
	if f.EnvVar != "" && r.LookupEnv != nil {
		if v := r.LookupEnv(f.EnvVar); v != "" {
			return v
		}
	}
	if f.Stored != nil && r.Stored != nil {
		if v := f.Stored(r.Stored); v != "" {
			return v
		}
	}
	return f.Default
}

// ResolveAll resolves a set of fields into a flat effective configuration.
// Field provenance is not retained beyond the merge.
func (r *Resolver) ResolveAll(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = r.Resolve(name)
	}
	return out
}

// Require resolves the named fields and fails with a MissingFieldsError
// listing all unset required fields at once.
func (r *Resolver) Require(names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		v := r.Resolve(name)
		if v == "" {
			missing = append(missing, name)
			continue
		}
		out[name] = v
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingFieldsError{Fields: missing}
	}
	return out, nil
}
