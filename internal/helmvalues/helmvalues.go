// Package helmvalues renders the helm values file a configured provider run
// hands to the chart. The values carry only non-secret settings; client
// secrets reach the deployment through the credentials secret instead.
package helmvalues

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Input is the effective configuration the values are rendered from.
type Input struct {
	Provider        string
	Issuer          string
	Audience        string
	ClientID        string
	ImageRepository string
	ImageTag        string
}

// Values mirrors the chart's values.yaml schema.
type Values struct {
	Image        Image     `yaml:"image"`
	ReplicaCount int       `yaml:"replicaCount"`
	OIDC         OIDC      `yaml:"oidc"`
	Service      Service   `yaml:"service"`
	Ingress      Ingress   `yaml:"ingress"`
	Resources    Resources `yaml:"resources"`
}

type Image struct {
	Repository string `yaml:"repository"`
	PullPolicy string `yaml:"pullPolicy"`
	Tag        string `yaml:"tag"`
}

type OIDC struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	ClientID string `yaml:"clientId"`
}

type Service struct {
	Type string `yaml:"type"`
}

type Ingress struct {
	Enabled     bool              `yaml:"enabled"`
	ClassName   string            `yaml:"className"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
	Host        string            `yaml:"host"`
	Path        string            `yaml:"path"`
	PathType    string            `yaml:"pathType"`
	TLS         IngressTLS        `yaml:"tls"`
}

type IngressTLS struct {
	Enabled bool `yaml:"enabled"`
}

type Resources struct {
	Requests ResourceList `yaml:"requests"`
	Limits   ResourceList `yaml:"limits"`
}

type ResourceList struct {
	Memory string `yaml:"memory"`
	CPU    string `yaml:"cpu"`
}

var releaseTagPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+`)

// LoadMakeEnv reads REGISTRY, IMAGE_NAME and TAG from a make.env file in
// dir, the same file the image build targets use. A missing file yields
// empty values and Build falls back to its placeholders.
func LoadMakeEnv(dir string) (repository, tag string) {
	data, err := os.ReadFile(filepath.Join(dir, "make.env"))
	if err != nil {
		return "", ""
	}

	vars := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	registry := vars["REGISTRY"]
	if registry == "" {
		registry = "your-registry.example.com"
	}
	name := vars["IMAGE_NAME"]
	if name == "" {
		name = "mcp-server"
	}
	return registry + "/" + name, vars["TAG"]
}

// FileName returns the per-provider values file name.
func FileName(provider string) string {
	if provider == "auth0" {
		return "auth0-values.yaml"
	}
	return "oidc-values.yaml"
}

// Build assembles chart values from the effective config. Release-style
// image tags get a cacheable pull policy; everything else pulls fresh.
func Build(in Input) *Values {
	repo := in.ImageRepository
	if repo == "" {
		repo = "your-registry.example.com/mcp-server"
	}
	pullPolicy := "Always"
	if releaseTagPattern.MatchString(in.ImageTag) {
		pullPolicy = "IfNotPresent"
	}

	return &Values{
		Image: Image{
			Repository: repo,
			PullPolicy: pullPolicy,
			Tag:        in.ImageTag,
		},
		ReplicaCount: 1,
		OIDC: OIDC{
			Issuer:   in.Issuer,
			Audience: in.Audience,
			ClientID: in.ClientID,
		},
		Service: Service{Type: "ClusterIP"},
		Ingress: Ingress{
			Enabled:   true,
			ClassName: "nginx",
			Annotations: map[string]string{
				"cert-manager.io/cluster-issuer": "letsencrypt",
			},
			Host:     IngressHost(in.Audience),
			Path:     "/",
			PathType: "Prefix",
			TLS:      IngressTLS{Enabled: true},
		},
		Resources: Resources{
			Requests: ResourceList{Memory: "256Mi", CPU: "100m"},
			Limits:   ResourceList{Memory: "512Mi", CPU: "500m"},
		},
	}
}

// IngressHost derives the external hostname from the audience URL.
func IngressHost(audience string) string {
	parsed, err := url.Parse(audience)
	if err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return "mcp-api.example.com"
}

// Write renders the values to path, overwriting any previous file.
func Write(path string, values *Values) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to render helm values: %w", err)
	}

	header := []byte("# Helm values for the MCP server deployment.\n# Generated by mcp-base; client secrets come from the credentials secret, not this file.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("failed to write helm values file: %w", err)
	}
	return nil
}
