// Package secrets supplies the symmetric signing key for session tokens.
// The key lives in a secure parameter store and is fetched once per process.
package secrets

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// DefaultParameterName is the SSM parameter holding the JWT signing secret.
const DefaultParameterName = "/personal-board/jwt-secret"

type Provider interface {
	FetchSigningSecret(ctx context.Context) ([]byte, error)
}

// SSMProvider fetches the decrypted signing secret from AWS Systems Manager
// Parameter Store.
type SSMProvider struct {
	client *ssm.Client
	name   string
}

func NewSSMProvider(ctx context.Context, parameterName string) (*SSMProvider, error) {
	if parameterName == "" {
		parameterName = DefaultParameterName
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SSMProvider{
		client: ssm.NewFromConfig(cfg),
		name:   parameterName,
	}, nil
}

func (p *SSMProvider) FetchSigningSecret(ctx context.Context) ([]byte, error) {
	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(p.name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching parameter %s: %w", p.name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return nil, fmt.Errorf("parameter %s is empty", p.name)
	}
	return []byte(*out.Parameter.Value), nil
}

// StaticProvider returns a fixed secret. Used in development and tests.
type StaticProvider []byte

func (p StaticProvider) FetchSigningSecret(context.Context) ([]byte, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("static signing secret is empty")
	}
	return []byte(p), nil
}

// Cache memoizes the secret for the life of the process. Two cold requests
// racing may both hit the provider; the value is immutable once fetched, so
// the duplicate fetch is harmless and cheaper than serializing every caller
// behind a lock. Errors are never cached.
type Cache struct {
	provider Provider
	value    atomic.Value // []byte
}

func NewCache(provider Provider) *Cache {
	return &Cache{provider: provider}
}

func (c *Cache) SigningSecret(ctx context.Context) ([]byte, error) {
	if v := c.value.Load(); v != nil {
		return v.([]byte), nil
	}

	secret, err := c.provider.FetchSigningSecret(ctx)
	if err != nil {
		return nil, err
	}

	c.value.Store(secret)
	return secret, nil
}
