package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const requestTimeout = 30 * time.Second

// Client is a thin bearer-token client for the Auth0 management API v2.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a management API client for the given tenant domain.
// The token is an operator-supplied management token; it is held in memory
// only and never persisted.
func NewClient(domain, token string) *Client {
	return NewClientWithBaseURL(fmt.Sprintf("https://%s/api/v2", domain), token, nil)
}

// NewClientWithBaseURL returns a client against an explicit API base URL.
// Callers wiring the client to a local fake server use this directly.
func NewClientWithBaseURL(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
	}
}

// ManagementAudience returns the identifier of the tenant's own management
// API, the audience management tokens are issued for.
func ManagementAudience(domain string) string {
	return fmt.Sprintf("https://%s/api/v2/", domain)
}

// ManagementToken obtains a management API token via the client credentials
// grant, for runs where the operator saved a management client instead of
// pasting a token.
func ManagementToken(ctx context.Context, domain, clientID, clientSecret string) (string, error) {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://%s/oauth/token", domain),
		EndpointParams: url.Values{
			"audience": {ManagementAudience(domain)},
		},
	}

	tok, err := cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain management token: %w", err)
	}
	return tok.AccessToken, nil
}

// do performs one management API call. A non-2xx status is returned as an
// APIError; the caller decides whether that aborts the run.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("management API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ValidateToken makes a minimal read call to verify the management token
// before any mutating work starts.
func (c *Client) ValidateToken(ctx context.Context) error {
	var out []Application
	return c.do(ctx, http.MethodGet, "/clients?per_page=1", nil, &out)
}

func (c *Client) ListResourceServers(ctx context.Context) ([]ResourceServer, error) {
	var out []ResourceServer
	if err := c.do(ctx, http.MethodGet, "/resource-servers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateResourceServer(ctx context.Context, rs ResourceServer) (*ResourceServer, error) {
	var out ResourceServer
	if err := c.do(ctx, http.MethodPost, "/resource-servers", rs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateResourceServerScopes patches the scope list of an existing API.
func (c *Client) UpdateResourceServerScopes(ctx context.Context, id string, scopes []Scope) error {
	patch := struct {
		Scopes []Scope `json:"scopes"`
	}{Scopes: scopes}
	return c.do(ctx, http.MethodPatch, "/resource-servers/"+url.PathEscape(id), patch, nil)
}

func (c *Client) ListClients(ctx context.Context) ([]Application, error) {
	var out []Application
	if err := c.do(ctx, http.MethodGet, "/clients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateClient(ctx context.Context, app Application) (*Application, error) {
	var out Application
	if err := c.do(ctx, http.MethodPost, "/clients", app, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient patches an existing client. Only the fields set in patch are
// sent, so callers can update callbacks without touching anything else.
func (c *Client) UpdateClient(ctx context.Context, clientID string, patch Application) error {
	return c.do(ctx, http.MethodPatch, "/clients/"+url.PathEscape(clientID), patch, nil)
}

func (c *Client) DeleteClient(ctx context.Context, clientID string) error {
	return c.do(ctx, http.MethodDelete, "/clients/"+url.PathEscape(clientID), nil, nil)
}

func (c *Client) ListClientGrants(ctx context.Context) ([]ClientGrant, error) {
	var out []ClientGrant
	if err := c.do(ctx, http.MethodGet, "/client-grants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateClientGrant(ctx context.Context, grant ClientGrant) error {
	return c.do(ctx, http.MethodPost, "/client-grants", grant, nil)
}

// FindUserByEmail searches the tenant for a user by exact email address.
// Returns nil when no user matches.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := url.Values{"q": {fmt.Sprintf("email:%q", email)}}
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users?"+query.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// UpdateUserAllowedClients replaces the user's allowedClients list.
func (c *Client) UpdateUserAllowedClients(ctx context.Context, userID string, allowed []string) (*User, error) {
	patch := struct {
		AppMetadata AppMetadata `json:"app_metadata"`
	}{AppMetadata: AppMetadata{AllowedClients: allowed}}

	var out User
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
