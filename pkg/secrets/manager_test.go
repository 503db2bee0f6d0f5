package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsAPI struct {
	values map[string]string
	calls  int
}

func (f *fakeSecretsAPI) GetSecretValueWithContext(ctx aws.Context, in *secretsmanager.GetSecretValueInput, _ ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[aws.StringValue(in.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestEnvironmentManager(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")

	m, err := NewManager(Config{Backend: "env"})
	require.NoError(t, err)

	v, err := m.GetSecret(context.Background(), "TWILIO_AUTH_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	_, err = m.GetSecret(context.Background(), "MISSING_SECRET_KEY")
	assert.Error(t, err)
}

func TestNewManager_UnsupportedBackend(t *testing.T) {
	_, err := NewManager(Config{Backend: "vault"})
	assert.Error(t, err)
}

func TestAWSSecretsManager_Cache(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"STRIPE_WEBHOOK_SECRET": "whsec_1"}}
	m := NewAWSSecretsManager(api, time.Minute)
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := m.GetSecret(ctx, "STRIPE_WEBHOOK_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "whsec_1", v)
	}
	assert.Equal(t, 1, api.calls)

	now = now.Add(2 * time.Minute)
	_, err := m.GetSecret(ctx, "STRIPE_WEBHOOK_SECRET")
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)

	_, err = m.GetSecret(ctx, "NOPE")
	assert.ErrorContains(t, err, "NOPE")
}

func TestOverlay(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"AGENT_API_KEY": "from-aws"}}
	m := NewAWSSecretsManager(api, time.Minute)

	agentKey := "from-env"
	authToken := "keep-me"
	Overlay(context.Background(), m, map[string]*string{
		"AGENT_API_KEY":     &agentKey,
		"TWILIO_AUTH_TOKEN": &authToken,
	})

	assert.Equal(t, "from-aws", agentKey)
	assert.Equal(t, "keep-me", authToken)
}
