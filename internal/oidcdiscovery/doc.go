// Package oidcdiscovery validates that an issuer serves a usable OIDC
// discovery document. It never makes mutating calls against the provider;
// Dex, Keycloak and Okta setups are expected to be configured out-of-band
// and this package only confirms the deployment can rely on them.
package oidcdiscovery
