package oidcdiscovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Endpoints is the subset of the discovery document the deployment needs.
type Endpoints struct {
	Issuer                string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURI               string
	UserinfoEndpoint      string
}

// DiscoveryError reports an issuer whose discovery document is unreachable,
// malformed, or missing required endpoints.
type DiscoveryError struct {
	Issuer string
	Reason string
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("OIDC discovery failed for %s: %s: %v", e.Issuer, e.Reason, e.Err)
	}
	return fmt.Sprintf("OIDC discovery failed for %s: %s", e.Issuer, e.Reason)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// NormalizeIssuer strips the trailing slash operators tend to paste in.
// Discovery compares the issuer byte-for-byte against the document's claim,
// and Dex and Keycloak publish theirs without the slash.
func NormalizeIssuer(issuer string) string {
	return strings.TrimSuffix(strings.TrimSpace(issuer), "/")
}

// Validate fetches {issuer}/.well-known/openid-configuration and confirms
// the document names the endpoints token verification depends on.
func Validate(ctx context.Context, issuer string) (*Endpoints, error) {
	issuer = NormalizeIssuer(issuer)
	if issuer == "" {
		return nil, &DiscoveryError{Issuer: issuer, Reason: "issuer URL is empty"}
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, &DiscoveryError{Issuer: issuer, Reason: "could not fetch discovery document", Err: err}
	}

	var claims struct {
		AuthorizationEndpoint string `json:"authorization_endpoint"`
		TokenEndpoint         string `json:"token_endpoint"`
		JWKSURI               string `json:"jwks_uri"`
		UserinfoEndpoint      string `json:"userinfo_endpoint"`
	}
	if err := provider.Claims(&claims); err != nil {
		return nil, &DiscoveryError{Issuer: issuer, Reason: "malformed discovery document", Err: err}
	}

	var missing []string
	if claims.AuthorizationEndpoint == "" {
		missing = append(missing, "authorization_endpoint")
	}
	if claims.TokenEndpoint == "" {
		missing = append(missing, "token_endpoint")
	}
	if claims.JWKSURI == "" {
		missing = append(missing, "jwks_uri")
	}
	if len(missing) > 0 {
		return nil, &DiscoveryError{
			Issuer: issuer,
			Reason: "discovery document missing " + strings.Join(missing, ", "),
		}
	}

	return &Endpoints{
		Issuer:                issuer,
		AuthorizationEndpoint: claims.AuthorizationEndpoint,
		TokenEndpoint:         claims.TokenEndpoint,
		JWKSURI:               claims.JWKSURI,
		UserinfoEndpoint:      claims.UserinfoEndpoint,
	}, nil
}
