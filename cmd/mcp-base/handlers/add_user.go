package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waTeim/mcp-base-cli/internal/auth0"
	"github.com/waTeim/mcp-base-cli/internal/config"
)

// AddUserOptions carries the add-user flags outside the resolved field set.
type AddUserOptions struct {
	Email      string
	ConfigFile string
}

// AddUser grants an Auth0 user access to the server client by adding the
// client id to the user's allowed-clients metadata.
func AddUser(ctx context.Context, flags *pflag.FlagSet, opts AddUserOptions) error {
	if opts.Email == "" {
		return fmt.Errorf("--email is required")
	}

	configPath := opts.ConfigFile
	if configPath == "" {
		configPath = config.Auth0File
	}
	stored, err := config.Load(configPath)
	if err != nil {
		return err
	}

	res := config.NewResolver(flags, stored)
	vals, err := res.Require("domain", "client-id")
	if err != nil {
		return err
	}
	domain, err := auth0.NormalizeDomain(vals["domain"])
	if err != nil {
		return err
	}

	token, err := resolveManagementToken(ctx, res, stored, domain)
	if err != nil {
		return err
	}

	client := newAuth0Client(domain, token)
	if err := client.ValidateToken(ctx); err != nil {
		return fmt.Errorf("management token rejected by %s: %w", domain, err)
	}

	added, err := auth0.NewReconciler(client).AddUserClient(ctx, opts.Email, vals["client-id"])
	if err != nil {
		return err
	}

	if added {
		fmt.Printf("Granted %s access to client %s\n", opts.Email, vals["client-id"])
	} else {
		fmt.Printf("%s already has access to client %s\n", opts.Email, vals["client-id"])
	}
	return nil
}
