package handlers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/waTeim/mcp-base-cli/internal/auth0"
	"github.com/waTeim/mcp-base-cli/internal/config"
	"github.com/waTeim/mcp-base-cli/internal/helmvalues"
	"github.com/waTeim/mcp-base-cli/internal/oidcdiscovery"
)

// validateIssuer is a factory variable so tests can substitute discovery.
var validateIssuer = oidcdiscovery.Validate

// SetupOIDCOptions carries the setup-oidc flags that are not part of the
// precedence-resolved field set.
type SetupOIDCOptions struct {
	Provider       string
	ConfigFile     string
	ClientName     string
	NoSaveConfig   bool
	RecreateClient bool
	SkipGrant      bool
	SkipMgmtClient bool
	SkipValidation bool
}

// providerSetup is implemented once per supported provider kind and selected
// exactly once at startup.
type providerSetup interface {
	Setup(ctx context.Context, res *config.Resolver, stored *config.Stored, opts SetupOIDCOptions, configPath string) error
}

func providerFor(name string) (providerSetup, error) {
	switch name {
	case "", "auth0":
		return &auth0Setup{}, nil
	case "generic", "dex", "keycloak", "okta":
		return &genericSetup{kind: name}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: auth0, generic, dex, keycloak, okta)", name)
	}
}

// SetupOIDC configures the selected identity provider and writes the
// non-secret configuration file plus the helm values file.
func SetupOIDC(ctx context.Context, flags *pflag.FlagSet, opts SetupOIDCOptions) error {
	setup, err := providerFor(opts.Provider)
	if err != nil {
		return err
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		if _, ok := setup.(*auth0Setup); ok {
			configPath = config.Auth0File
		} else {
			configPath = config.OIDCFile
		}
	}

	stored, err := config.Load(configPath)
	if err != nil {
		return err
	}

	res := config.NewResolver(flags, stored)
	return setup.Setup(ctx, res, stored, opts, configPath)
}

type auth0Setup struct{}

func (a *auth0Setup) Setup(ctx context.Context, res *config.Resolver, stored *config.Stored, opts SetupOIDCOptions, configPath string) error {
	vals, err := res.Require("domain")
	if err != nil {
		return err
	}
	domain, err := auth0.NormalizeDomain(vals["domain"])
	if err != nil {
		return err
	}

	apiIdentifier := res.Resolve("api-identifier")
	if apiIdentifier == "" {
		apiIdentifier = fmt.Sprintf("https://%s/mcp", domain)
		fmt.Printf("Using default API identifier: %s\n", apiIdentifier)
	}
	apiName := res.Resolve("api-name")
	if apiName == "" {
		apiName = "MCP API"
	}
	clientName := opts.ClientName
	if clientName == "" {
		clientName = apiName + " Client"
	}

	token, err := resolveManagementToken(ctx, res, stored, domain)
	if err != nil {
		return err
	}

	client := newAuth0Client(domain, token)
	if err := client.ValidateToken(ctx); err != nil {
		return fmt.Errorf("management token rejected by %s: %w", domain, err)
	}

	fmt.Printf("Configuring Auth0 tenant %s...\n", domain)
	rec := auth0.NewReconciler(client)
	result, err := rec.Reconcile(ctx, auth0.Input{
		APIName:        apiName,
		APIIdentifier:  apiIdentifier,
		ClientName:     clientName,
		RecreateClient: opts.RecreateClient,
		SkipGrant:      opts.SkipGrant,
	})
	if err != nil {
		return err
	}

	// The management client is what lets a later run exchange
	// AUTH0_MGMT_CLIENT_SECRET for a fresh token instead of asking for one.
	mgmtClientID := ""
	if stored != nil {
		mgmtClientID = stored.MgmtClientID
	}
	var mgmtSecret string
	if !opts.SkipMgmtClient {
		mgmtApp, createdMgmt, err := rec.EnsureManagementClient(ctx, auth0.DefaultManagementClientName, auth0.ManagementAudience(domain), opts.RecreateClient)
		if err != nil {
			return fmt.Errorf("management client: %w", err)
		}
		mgmtClientID = mgmtApp.ClientID
		mgmtSecret = mgmtApp.ClientSecret
		if createdMgmt {
			fmt.Println("Created management client")
		} else {
			fmt.Println("Reusing existing management client")
		}
	}

	printAuth0Result(result, apiIdentifier, mgmtClientID, mgmtSecret)

	if !opts.NoSaveConfig {
		next := &config.Stored{
			Provider:     "auth0",
			Domain:       domain,
			Issuer:       fmt.Sprintf("https://%s", domain),
			Audience:     apiIdentifier,
			APIName:      apiName,
			ClientID:     result.ClientID,
			MgmtClientID: mgmtClientID,
		}
		if stored != nil {
			next.Namespace = stored.Namespace
			next.ReleaseName = stored.ReleaseName
		}
		if err := config.Save(configPath, next); err != nil {
			return err
		}
		fmt.Printf("Saved configuration to %s\n", configPath)
	}

	return writeValuesFile(configPath, helmvalues.Input{
		Provider: "auth0",
		Issuer:   fmt.Sprintf("https://%s", domain),
		Audience: apiIdentifier,
		ClientID: result.ClientID,
	})
}

func printAuth0Result(result *auth0.Result, apiIdentifier, mgmtClientID, mgmtSecret string) {
	if result.CreatedAPI {
		fmt.Printf("Created API %s\n", apiIdentifier)
	} else {
		fmt.Printf("API %s already exists\n", apiIdentifier)
	}
	if result.UpdatedScopes {
		fmt.Println("Updated API scopes")
	}
	if result.CreatedClient {
		fmt.Println("Created server client")
	} else {
		fmt.Println("Reusing existing server client (secret not retrievable; use --recreate-client to rotate)")
	}

	entries := []summaryEntry{
		{Name: "api identifier", Value: apiIdentifier},
		{Name: "client id", Value: result.ClientID},
	}
	if result.ClientSecret != "" {
		entries = append(entries, summaryEntry{Name: "client secret", Value: result.ClientSecret})
	}
	if mgmtClientID != "" {
		entries = append(entries, summaryEntry{Name: "mgmt client id", Value: mgmtClientID})
	}
	if mgmtSecret != "" {
		entries = append(entries, summaryEntry{Name: "mgmt client secret", Value: mgmtSecret})
	}
	printSummaryStyled("Auth0 configuration", entries)

	if result.ClientSecret != "" {
		fmt.Println("The client secret is shown once and is not saved anywhere.")
		fmt.Println("Pass it to create-secrets via --client-secret or OIDC_CLIENT_SECRET.")
	}
	if mgmtSecret != "" {
		fmt.Println("The management client secret is shown once and is not saved anywhere.")
		fmt.Printf("Export it as %s to let future runs fetch management tokens automatically.\n", mgmtClientSecretEnv)
	}
}

type genericSetup struct {
	kind string
}

func (g *genericSetup) Setup(ctx context.Context, res *config.Resolver, stored *config.Stored, opts SetupOIDCOptions, configPath string) error {
	vals, err := res.Require("issuer", "audience", "client-id")
	if err != nil {
		return err
	}
	issuer := oidcdiscovery.NormalizeIssuer(vals["issuer"])

	var endpoints *oidcdiscovery.Endpoints
	if opts.SkipValidation {
		fmt.Println("Skipping issuer validation")
	} else {
		fmt.Printf("Validating issuer %s...\n", issuer)
		endpoints, err = validateIssuer(ctx, issuer)
		if err != nil {
			return err
		}
		fmt.Println("Discovery document is valid")
	}

	if !opts.NoSaveConfig {
		next := &config.Stored{
			Provider: g.kind,
			Issuer:   issuer,
			Audience: vals["audience"],
			ClientID: vals["client-id"],
		}
		if endpoints != nil {
			next.AuthorizationEndpoint = endpoints.AuthorizationEndpoint
			next.TokenEndpoint = endpoints.TokenEndpoint
			next.JWKSURI = endpoints.JWKSURI
		}
		if stored != nil {
			next.Namespace = stored.Namespace
			next.ReleaseName = stored.ReleaseName
		}
		if err := config.Save(configPath, next); err != nil {
			return err
		}
		fmt.Printf("Saved configuration to %s\n", configPath)
	}

	printSummaryStyled("OIDC configuration", []summaryEntry{
		{Name: "provider", Value: g.kind},
		{Name: "issuer", Value: issuer},
		{Name: "audience", Value: vals["audience"]},
		{Name: "client id", Value: vals["client-id"]},
	})

	return writeValuesFile(configPath, helmvalues.Input{
		Provider: g.kind,
		Issuer:   issuer,
		Audience: vals["audience"],
		ClientID: vals["client-id"],
	})
}

// writeValuesFile renders the helm values next to the configuration file.
// Image settings come from a make.env in the same directory when one exists.
func writeValuesFile(configPath string, in helmvalues.Input) error {
	dir := filepath.Dir(configPath)
	in.ImageRepository, in.ImageTag = helmvalues.LoadMakeEnv(dir)
	path := filepath.Join(dir, helmvalues.FileName(in.Provider))
	if err := helmvalues.Write(path, helmvalues.Build(in)); err != nil {
		return err
	}
	fmt.Printf("Created helm values file %s\n", path)
	return nil
}
