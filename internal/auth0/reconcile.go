package auth0

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DefaultScopes are the permissions created on a new MCP resource server.
var DefaultScopes = []Scope{
	{Value: "mcp:read", Description: "Read access to MCP tools"},
	{Value: "mcp:write", Description: "Write access to MCP tools"},
}

// ClaudeCallbackURL is the fixed redirect used by Claude Desktop's
// third-party auth flow.
const ClaudeCallbackURL = "https://claude.ai/api/mcp/auth_callback"

// DefaultManagementClientName is the M2M application recorded in the saved
// configuration so later runs can fetch management tokens instead of asking
// the operator to paste one.
const DefaultManagementClientName = "MCP Server Management Client"

// managementScopes is what the management client is granted against the
// tenant's management API. The list covers everything setup-oidc and
// add-user touch.
var managementScopes = []string{
	"read:tenant_settings", "update:tenant_settings",
	"read:resource_servers", "create:resource_servers", "update:resource_servers", "delete:resource_servers",
	"read:connections", "update:connections",
	"read:clients", "create:clients", "update:clients", "delete:clients",
	"read:client_keys", "read:client_summary",
	"read:client_grants", "create:client_grants", "update:client_grants", "delete:client_grants",
	"read:users", "update:users", "read:user_idp_tokens",
}

// Input configures one reconciliation pass.
type Input struct {
	APIName       string
	APIIdentifier string
	ClientName    string

	// RecreateClient rotates the server client by deleting and recreating
	// it. Off by default because rotation invalidates previously
	// distributed credentials.
	RecreateClient bool

	// SkipGrant leaves the client grant alone, for tenants where the
	// operator manages grants out-of-band.
	SkipGrant bool
}

// Result reports what the reconciliation did. ClientSecret is set only when
// the client was created in this run; Auth0 returns it exactly once.
type Result struct {
	APIID         string
	ClientID      string
	ClientSecret  string
	CreatedAPI    bool
	UpdatedScopes bool
	CreatedClient bool
	GrantedScopes []string
}

// Reconciler drives the tenant toward the desired state. Each step is
// independently idempotent; on the first error the whole pass aborts and
// the operator re-runs.
type Reconciler struct {
	client *Client
}

func NewReconciler(client *Client) *Reconciler {
	return &Reconciler{client: client}
}

// Reconcile runs all steps in order: resource server, server client,
// callback list, client grant.
func (r *Reconciler) Reconcile(ctx context.Context, in Input) (*Result, error) {
	res := &Result{}

	rs, created, err := r.ensureResourceServer(ctx, in, res)
	if err != nil {
		return nil, fmt.Errorf("resource server %s: %w", in.APIIdentifier, err)
	}
	res.APIID = rs.ID
	res.CreatedAPI = created

	app, err := r.ensureClient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", in.ClientName, err)
	}
	res.ClientID = app.ClientID
	res.ClientSecret = app.ClientSecret
	res.CreatedClient = app.ClientSecret != ""

	if !res.CreatedClient {
		if err := r.ensureCallbacks(ctx, app, in.APIIdentifier); err != nil {
			return nil, fmt.Errorf("client %s callbacks: %w", in.ClientName, err)
		}
	}

	if !in.SkipGrant {
		granted, err := r.ensureClientGrant(ctx, app.ClientID, in.APIIdentifier, rs.Scopes)
		if err != nil {
			return nil, fmt.Errorf("client grant for %s: %w", app.ClientID, err)
		}
		res.GrantedScopes = granted
	}

	return res, nil
}

// ensureResourceServer looks the API up by identifier and creates it when
// absent, or patches its scopes when present and divergent.
func (r *Reconciler) ensureResourceServer(ctx context.Context, in Input, res *Result) (*ResourceServer, bool, error) {
	servers, err := r.client.ListResourceServers(ctx)
	if err != nil {
		return nil, false, err
	}

	for i := range servers {
		if servers[i].Identifier != in.APIIdentifier {
			continue
		}
		existing := &servers[i]
		if missing := missingScopes(existing.Scopes, DefaultScopes); len(missing) > 0 {
			merged := append(existing.Scopes, missing...)
			if err := r.client.UpdateResourceServerScopes(ctx, existing.ID, merged); err != nil {
				return nil, false, err
			}
			existing.Scopes = merged
			res.UpdatedScopes = true
		}
		return existing, false, nil
	}

	created, err := r.client.CreateResourceServer(ctx, ResourceServer{
		Name:                in.APIName,
		Identifier:          in.APIIdentifier,
		SigningAlg:          "RS256",
		Scopes:              DefaultScopes,
		AllowOfflineAccess:  true,
		TokenLifetime:       86400,
		TokenLifetimeForWeb: 7200,
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// ensureClient looks the server application up by name. An existing client
// is reused as-is; its secret cannot be read back and is only rotated on
// an explicit RecreateClient.
func (r *Reconciler) ensureClient(ctx context.Context, in Input) (*Application, error) {
	clients, err := r.client.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	var existing *Application
	for i := range clients {
		if clients[i].Name == in.ClientName {
			existing = &clients[i]
			break
		}
	}

	if existing != nil && in.RecreateClient {
		if err := r.client.DeleteClient(ctx, existing.ClientID); err != nil {
			return nil, err
		}
		existing = nil
	}

	if existing != nil {
		existing.ClientSecret = ""
		return existing, nil
	}

	callbacks, origins := callbackURLs(in.APIIdentifier)
	return r.client.CreateClient(ctx, Application{
		Name:                    in.ClientName,
		Description:             fmt.Sprintf("OAuth client for %s", in.APIIdentifier),
		AppType:                 "regular_web",
		GrantTypes:              []string{"authorization_code", "refresh_token", "client_credentials"},
		TokenEndpointAuthMethod: "client_secret_post",
		Callbacks:               callbacks,
		WebOrigins:              origins,
		AllowedOrigins:          origins,
		OIDCConformant:          true,
	})
}

// ensureCallbacks patches a reused client so its callback and origin lists
// include the deployment's URLs, duplicate-free.
func (r *Reconciler) ensureCallbacks(ctx context.Context, app *Application, apiIdentifier string) error {
	callbacks, origins := callbackURLs(apiIdentifier)

	mergedCallbacks, changedCB := union(app.Callbacks, callbacks)
	mergedWeb, changedWeb := union(app.WebOrigins, origins)
	mergedAllowed, changedAllowed := union(app.AllowedOrigins, origins)

	if !changedCB && !changedWeb && !changedAllowed {
		return nil
	}

	return r.client.UpdateClient(ctx, app.ClientID, Application{
		Callbacks:      mergedCallbacks,
		WebOrigins:     mergedWeb,
		AllowedOrigins: mergedAllowed,
	})
}

// ensureClientGrant grants the client the API's scopes. An existing grant
// or a conflict response both count as success.
func (r *Reconciler) ensureClientGrant(ctx context.Context, clientID, audience string, scopes []Scope) ([]string, error) {
	grants, err := r.client.ListClientGrants(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(scopes))
	for _, s := range scopes {
		values = append(values, s.Value)
	}

	for _, g := range grants {
		if g.ClientID == clientID && g.Audience == audience {
			return g.Scope, nil
		}
	}

	err = r.client.CreateClientGrant(ctx, ClientGrant{
		ClientID: clientID,
		Audience: audience,
		Scope:    values,
	})
	if err != nil && !IsConflict(err) {
		return nil, err
	}
	return values, nil
}

// EnsureManagementClient finds or creates the M2M application used to fetch
// management tokens and grants it the management API scopes. Like the server
// client, the secret is returned only on the run that creates it.
func (r *Reconciler) EnsureManagementClient(ctx context.Context, name, mgmtAudience string, recreate bool) (*Application, bool, error) {
	clients, err := r.client.ListClients(ctx)
	if err != nil {
		return nil, false, err
	}

	var existing *Application
	for i := range clients {
		if clients[i].Name == name {
			existing = &clients[i]
			break
		}
	}

	if existing != nil && recreate {
		if err := r.client.DeleteClient(ctx, existing.ClientID); err != nil {
			return nil, false, err
		}
		existing = nil
	}

	if existing != nil {
		existing.ClientSecret = ""
		return existing, false, nil
	}

	created, err := r.client.CreateClient(ctx, Application{
		Name:                    name,
		Description:             "Machine-to-machine application for MCP server management",
		AppType:                 "non_interactive",
		GrantTypes:              []string{"client_credentials"},
		TokenEndpointAuthMethod: "client_secret_post",
	})
	if err != nil {
		return nil, false, err
	}

	err = r.client.CreateClientGrant(ctx, ClientGrant{
		ClientID: created.ClientID,
		Audience: mgmtAudience,
		Scope:    managementScopes,
	})
	if err != nil && !IsConflict(err) {
		return nil, false, err
	}
	return created, true, nil
}

// NormalizeDomain strips a scheme and trailing slash from an operator-typed
// tenant domain and rejects values that cannot be a hostname.
func NormalizeDomain(domain string) (string, error) {
	if strings.Contains(domain, "://") {
		parsed, err := url.Parse(domain)
		if err != nil || parsed.Host == "" {
			return "", fmt.Errorf("invalid domain %q", domain)
		}
		domain = parsed.Host
	}
	domain = strings.TrimSuffix(domain, "/")
	if domain == "" || !strings.Contains(domain, ".") {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	return domain, nil
}

// callbackURLs derives the redirect and origin lists from the API
// identifier: the server's own /auth/callback plus the Claude callback.
func callbackURLs(apiIdentifier string) (callbacks, origins []string) {
	callbacks = []string{ClaudeCallbackURL}
	origins = []string{"https://claude.ai"}

	parsed, err := url.Parse(apiIdentifier)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return callbacks, origins
	}
	base := parsed.Scheme + "://" + parsed.Host
	callbacks = append([]string{base + "/auth/callback"}, callbacks...)
	origins = append([]string{base}, origins...)
	return callbacks, origins
}

// missingScopes returns the scopes in want that are not present in have.
func missingScopes(have, want []Scope) []Scope {
	existing := make(map[string]struct{}, len(have))
	for _, s := range have {
		existing[s.Value] = struct{}{}
	}
	var missing []Scope
	for _, s := range want {
		if _, ok := existing[s.Value]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// union appends the members of add that are not already in base, preserving
// order. Reports whether anything was added.
func union(base, add []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	out := base
	changed := false
	for _, v := range add {
		if _, ok := seen[v]; !ok {
			out = append(out, v)
			seen[v] = struct{}{}
			changed = true
		}
	}
	return out, changed
}

// AddUserClient unions clientID into the user's allowedClients metadata.
// Returns false when the user already had access.
func (r *Reconciler) AddUserClient(ctx context.Context, email, clientID string) (bool, error) {
	user, err := r.client.FindUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("user not found: %s", email)
	}

	var allowed []string
	if user.AppMetadata != nil {
		allowed = user.AppMetadata.AllowedClients
	}
	merged, changed := union(allowed, []string{clientID})
	if !changed {
		return false, nil
	}

	if _, err := r.client.UpdateUserAllowedClients(ctx, user.UserID, merged); err != nil {
		return false, err
	}
	return true, nil
}
