package auth0

// Scope is one permission on a resource server.
type Scope struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ResourceServer is Auth0's representation of the protected API.
type ResourceServer struct {
	ID                  string  `json:"id,omitempty"`
	Name                string  `json:"name,omitempty"`
	Identifier          string  `json:"identifier,omitempty"`
	SigningAlg          string  `json:"signing_alg,omitempty"`
	Scopes              []Scope `json:"scopes,omitempty"`
	AllowOfflineAccess  bool    `json:"allow_offline_access,omitempty"`
	TokenLifetime       int     `json:"token_lifetime,omitempty"`
	TokenLifetimeForWeb int     `json:"token_lifetime_for_web,omitempty"`
}

// Application is an OAuth client registered in the tenant.
type Application struct {
	ClientID                string   `json:"client_id,omitempty"`
	ClientSecret            string   `json:"client_secret,omitempty"`
	Name                    string   `json:"name,omitempty"`
	Description             string   `json:"description,omitempty"`
	AppType                 string   `json:"app_type,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	Callbacks               []string `json:"callbacks,omitempty"`
	WebOrigins              []string `json:"web_origins,omitempty"`
	AllowedOrigins          []string `json:"allowed_origins,omitempty"`
	OIDCConformant          bool     `json:"oidc_conformant,omitempty"`
}

// ClientGrant authorizes a client for an audience with a set of scopes.
type ClientGrant struct {
	ID       string   `json:"id,omitempty"`
	ClientID string   `json:"client_id,omitempty"`
	Audience string   `json:"audience,omitempty"`
	Scope    []string `json:"scope"`
}

// User is the subset of an Auth0 user the add-user flow touches.
type User struct {
	UserID      string       `json:"user_id,omitempty"`
	Email       string       `json:"email,omitempty"`
	AppMetadata *AppMetadata `json:"app_metadata,omitempty"`
}

// AppMetadata carries the allowedClients authorization list.
type AppMetadata struct {
	AllowedClients []string `json:"allowedClients,omitempty"`
}
