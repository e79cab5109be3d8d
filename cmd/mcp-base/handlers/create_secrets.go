package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	corev1 "k8s.io/api/core/v1"

	"github.com/waTeim/mcp-base-cli/internal/config"
	"github.com/waTeim/mcp-base-cli/internal/k8s"
	"github.com/waTeim/mcp-base-cli/internal/keygen"
	"github.com/waTeim/mcp-base-cli/internal/naming"
)

// newK8sClient creates the cluster client - replaced in tests.
var newK8sClient = func(kubeconfig string) (*k8s.Client, error) {
	return k8s.NewClient(kubeconfig)
}

// CreateSecretsOptions carries the create-secrets flags outside the resolved
// field set.
type CreateSecretsOptions struct {
	ConfigFile string
	Kubeconfig string
	DryRun     bool
	Force      bool
}

// CreateSecrets provisions the credentials secret and the JWT signing key
// secret for a release.
func CreateSecrets(ctx context.Context, flags *pflag.FlagSet, opts CreateSecretsOptions) error {
	configPath := opts.ConfigFile
	if configPath == "" {
		var err error
		configPath, err = config.Detect(".")
		if err != nil {
			return err
		}
	}
	fmt.Printf("Using configuration from %s\n", configPath)

	stored, err := config.Load(configPath)
	if err != nil {
		return err
	}

	res := config.NewResolver(flags, stored)
	vals, err := res.Require("release-name", "client-id", "client-secret", "issuer", "audience")
	if err != nil {
		return err
	}
	namespace := res.Resolve("namespace")
	appName := res.Resolve("app-name")
	release := vals["release-name"]
	isAuth0 := stored.IsAuth0()

	mode := k8s.CreateIfAbsent
	switch {
	case opts.DryRun:
		mode = k8s.DryRun
	case opts.Force:
		mode = k8s.Force
	}

	var client *k8s.Client
	if opts.DryRun {
		// A dry run makes no API calls, so no cluster connection is needed.
		client = k8s.NewFromInterface(nil, namespace)
	} else {
		client, err = newK8sClient(opts.Kubeconfig)
		if err != nil {
			return err
		}
		created, err := client.EnsureNamespace(ctx, namespace)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created namespace %s\n", namespace)
		}
	}

	credData := map[string][]byte{
		"client-id":     []byte(vals["client-id"]),
		"client-secret": []byte(vals["client-secret"]),
		"issuer":        []byte(vals["issuer"]),
		"audience":      []byte(vals["audience"]),
	}
	if isAuth0 {
		credData["domain"] = []byte(res.Resolve("domain"))
		if stored != nil && stored.MgmtClientID != "" {
			credData["mgmt-client-id"] = []byte(stored.MgmtClientID)
		}
	}

	credName := naming.CredentialsSecret(release, isAuth0)
	credSecret := k8s.BuildSecret(credName, namespace, appName, "credentials", credData)
	if err := createOrSkip(ctx, client, credSecret, mode); err != nil {
		return err
	}

	jwtKey, err := keygen.JWTSigningKey()
	if err != nil {
		return err
	}
	storageKey, err := keygen.StorageEncryptionKey()
	if err != nil {
		return err
	}

	jwtName := naming.JWTKeySecret(release)
	jwtSecret := k8s.BuildSecret(jwtName, namespace, appName, "signing", map[string][]byte{
		"jwt-signing-key":        []byte(jwtKey),
		"storage-encryption-key": []byte(storageKey),
	})
	if err := createOrSkip(ctx, client, jwtSecret, mode); err != nil {
		return err
	}

	if !opts.DryRun {
		printSummaryStyled("Secrets for release "+release, []summaryEntry{
			{Name: "credentials secret", Value: fmt.Sprintf("%s/%s", namespace, credName)},
			{Name: "signing key secret", Value: fmt.Sprintf("%s/%s", namespace, jwtName)},
		})
	}
	return nil
}

// createOrSkip writes one secret. An existing secret in non-force mode is a
// visible skip, not a failure: re-runs leave previously issued keys intact.
func createOrSkip(ctx context.Context, client *k8s.Client, secret *corev1.Secret, mode k8s.Mode) error {
	err := client.CreateSecret(ctx, secret, mode)

	var existsErr *k8s.SecretExistsError
	if errors.As(err, &existsErr) {
		fmt.Printf("Secret %s/%s already exists, keeping it (use --force to replace)\n", existsErr.Namespace, existsErr.Name)
		return nil
	}
	if err != nil {
		return err
	}

	if mode != k8s.DryRun {
		fmt.Printf("Created secret %s/%s\n", secret.Namespace, secret.Name)
	}
	return nil
}
