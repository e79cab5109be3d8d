package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// maxSecretSize mirrors the API server's 1MiB object cap.
const maxSecretSize = 1024 * 1024

// Mode selects how CreateSecret treats the cluster.
type Mode int

const (
	// CreateIfAbsent creates the secret and reports SecretExistsError when
	// one is already there, leaving it untouched.
	CreateIfAbsent Mode = iota
	// Force deletes any existing secret first and recreates it.
	Force
	// DryRun prints the object that would be written and makes no mutating
	// calls at all.
	DryRun
)

// SecretExistsError signals that a secret was left in place because the run
// was not forced. Operators re-run with force to rotate.
type SecretExistsError struct {
	Namespace string
	Name      string
}

func (e *SecretExistsError) Error() string {
	return fmt.Sprintf("secret %s/%s already exists (use force to replace)", e.Namespace, e.Name)
}

// BuildSecret assembles an Opaque secret with this tool's label set.
func BuildSecret(name, namespace, appName, component string, data map[string][]byte) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels(appName, component),
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
}

// CreateSecret writes the secret according to mode. Validation happens in
// every mode so a dry run reports the same failures a real run would.
func (c *Client) CreateSecret(ctx context.Context, secret *corev1.Secret, mode Mode) error {
	if err := validateSecret(secret); err != nil {
		return err
	}

	if mode == DryRun {
		printed, err := json.MarshalIndent(secret, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render secret: %w", err)
		}
		fmt.Printf("Dry run: would create secret %s/%s:\n%s\n", secret.Namespace, secret.Name, printed)
		return nil
	}

	secrets := c.clientset.CoreV1().Secrets(secret.Namespace)

	if mode == Force {
		err := secrets.Delete(ctx, secret.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete existing secret %s/%s: %w", secret.Namespace, secret.Name, err)
		}
	}

	_, err := secrets.Create(ctx, secret, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return &SecretExistsError{Namespace: secret.Namespace, Name: secret.Name}
	}
	if err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}
	return nil
}

func validateSecret(secret *corev1.Secret) error {
	if secret.Name == "" {
		return fmt.Errorf("secret name is empty")
	}
	if secret.Namespace == "" {
		return fmt.Errorf("secret namespace is empty")
	}
	if len(secret.Data) == 0 {
		return fmt.Errorf("secret %s has no data", secret.Name)
	}

	total := 0
	for key, value := range secret.Data {
		if !utf8.Valid(value) {
			return fmt.Errorf("secret %s key %s holds invalid UTF-8", secret.Name, key)
		}
		total += len(key) + len(value)
	}
	if total > maxSecretSize {
		return fmt.Errorf("secret %s exceeds the 1MiB size limit", secret.Name)
	}
	return nil
}
