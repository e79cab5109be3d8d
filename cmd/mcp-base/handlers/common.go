// Package handlers implements the command execution logic for the mcp-base
// CLI. Commands parse flags and delegate here; every handler returns an
// error that main reports at the process boundary.
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/waTeim/mcp-base-cli/internal/auth0"
	"github.com/waTeim/mcp-base-cli/internal/config"
)

// Factory function variables - can be replaced in tests.
var (
	newAuth0Client       = auth0.NewClient
	fetchManagementToken = auth0.ManagementToken
)

// mgmtClientSecretEnv supplies the management client secret for token
// auto-fetch. It is env-only; the stored file never carries secrets.
const mgmtClientSecretEnv = "AUTH0_MGMT_CLIENT_SECRET"

// resolveManagementToken returns an Auth0 management token: the explicit
// --token flag or env var wins, otherwise a saved management client plus its
// secret from the environment is exchanged for a fresh token.
func resolveManagementToken(ctx context.Context, res *config.Resolver, stored *config.Stored, domain string) (string, error) {
	if token := res.Resolve("token"); token != "" {
		return token, nil
	}

	if stored != nil && stored.MgmtClientID != "" && res.LookupEnv != nil {
		if secret := res.LookupEnv(mgmtClientSecretEnv); secret != "" {
			fmt.Printf("Fetching management token for client %s...\n", stored.MgmtClientID)
			return fetchManagementToken(ctx, domain, stored.MgmtClientID, secret)
		}
	}

	return "", &config.MissingFieldsError{Fields: []string{"token"}}
}

// summaryEntry is one name/value line of a styled summary block.
type summaryEntry struct {
	Name  string
	Value string
}

// printSummaryStyled renders a titled block of name/value pairs the way the
// operator sees credentials and created resources.
func printSummaryStyled(title string, entries []summaryEntry) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	fmt.Println()
	fmt.Println(titleStyle.Render("  " + title))
	fmt.Println(dimStyle.Render("  " + strings.Repeat("=", 40)))
	for _, entry := range entries {
		fmt.Printf("  %s  %s\n", nameStyle.Render(fmt.Sprintf("%-24s", entry.Name)), valueStyle.Render(entry.Value))
	}
	fmt.Println()
}
