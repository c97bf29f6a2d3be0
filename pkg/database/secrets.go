package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	DefaultSecretID     = "/launch/db/credentials"
	DefaultSecretRegion = "us-west-2"
)

var (
	ErrSecretNotString  = errors.New("secret has no string value")
	ErrIncompleteSecret = errors.New("secret is missing username or password")
)

// SecretsClient is the Secrets Manager call the loader needs.
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Credentials is the JSON document stored in the database secret. Host and
// port are optional; RDS-managed secrets carry them.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
}

// NewSecretsClient builds a Secrets Manager client from the default AWS
// credential chain.
func NewSecretsClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	if region == "" {
		region = DefaultSecretRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// FetchCredentials reads and decodes the secret. DBName defaults to
// "postgres" when the secret leaves it out.
func FetchCredentials(ctx context.Context, client SecretsClient, secretID string) (*Credentials, error) {
	if secretID == "" {
		secretID = DefaultSecretID
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("%s: %w", secretID, ErrSecretNotString)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("failed to decode secret %s: %w", secretID, err)
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%s: %w", secretID, ErrIncompleteSecret)
	}
	if creds.DBName == "" {
		creds.DBName = "postgres"
	}

	return &creds, nil
}

// Apply copies the credentials into cfg, keeping cfg's host and port unless
// the secret provides them.
func (c *Credentials) Apply(cfg *Config) {
	cfg.User = c.Username
	cfg.Password = c.Password
	cfg.DBName = c.DBName
	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
}

// LoadWithSecret fetches the secret and merges it into a copy of cfg.
func LoadWithSecret(ctx context.Context, client SecretsClient, secretID string, cfg Config) (Config, error) {
	creds, err := FetchCredentials(ctx, client, secretID)
	if err != nil {
		return cfg, err
	}
	creds.Apply(&cfg)
	return cfg, nil
}
