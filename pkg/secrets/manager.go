// Package secrets resolves credentials from the environment or from AWS
// Secrets Manager.
package secrets

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// Manager retrieves a secret by key
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// Config holds secrets manager configuration
type Config struct {
	Backend       string        // "env" or "aws-secrets-manager"
	AWSRegion     string        // AWS region for Secrets Manager
	CacheDuration time.Duration // How long to cache secrets
}

// NewManager creates a secrets manager for the configured backend
func NewManager(cfg Config) (Manager, error) {
	switch cfg.Backend {
	case "aws-secrets-manager", "aws":
		log.Printf("🔐 Initializing AWS Secrets Manager (region: %s)", cfg.AWSRegion)
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		return NewAWSSecretsManager(secretsmanager.New(sess), cfg.CacheDuration), nil
	case "", "env", "environment":
		return EnvironmentManager{}, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// EnvironmentManager reads secrets from environment variables
type EnvironmentManager struct{}

// GetSecret returns the variable named key
func (EnvironmentManager) GetSecret(ctx context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret not found: %s", key)
	}
	return value, nil
}

// SecretsAPI is the subset of the Secrets Manager client in use
type SecretsAPI interface {
	GetSecretValueWithContext(ctx aws.Context, input *secretsmanager.GetSecretValueInput, opts ...request.Option) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManager loads secrets from AWS Secrets Manager with a TTL cache
type AWSSecretsManager struct {
	client SecretsAPI
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewAWSSecretsManager wraps a Secrets Manager client
func NewAWSSecretsManager(client SecretsAPI, ttl time.Duration) *AWSSecretsManager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AWSSecretsManager{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[string]cachedSecret),
	}
}

// GetSecret retrieves a secret, serving it from cache while fresh
func (m *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	cached, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && m.now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	result, err := m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", key)
	}

	m.mu.Lock()
	m.cache[key] = cachedSecret{value: *result.SecretString, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()

	log.Printf("✅ Loaded secret from AWS Secrets Manager: %s", key)
	return *result.SecretString, nil
}

// Overlay replaces each target with the secret stored under its key.
// Targets whose secret is missing keep their current value.
func Overlay(ctx context.Context, m Manager, targets map[string]*string) {
	for key, dst := range targets {
		value, err := m.GetSecret(ctx, key)
		if err != nil || value == "" {
			continue
		}
		*dst = value
	}
}
