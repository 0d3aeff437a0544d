package orgmap

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config carries bootstrap settings for Connect.
type Config struct {
	// TableName is the identity table. The table and its indexes are
	// provisioned out of band; Connect only verifies existence.
	TableName string `env:"ORGMAP_TABLE_NAME,required"`
	Region    string `env:"AWS_REGION" envDefault:"eu-west-2"`

	// Endpoint overrides the service endpoint, e.g. http://localhost:8000
	// for DynamoDB Local. Empty means the default resolver.
	Endpoint string `env:"ORGMAP_ENDPOINT"`

	// Admin account seeded on bootstrap when missing.
	AdminEmail    string `env:"ORGMAP_ADMIN_EMAIL" envDefault:"test@example.com"`
	AdminPassword string `env:"ORGMAP_ADMIN_PASSWORD" envDefault:"admin"`
}

// ParseConfig resolves a Config from environment variables.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Connect loads AWS configuration, verifies the identity table exists,
// seeds the admin account when missing and returns a Store bound to the
// table.
func Connect(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	store := New(client, NewTable(cfg.TableName))
	if err := store.CheckTable(ctx); err != nil {
		logger.Error().Err(err).Str("table", cfg.TableName).Msg("db init: table check failed")
		return nil, err
	}
	if err := store.EnsureAdmin(ctx, cfg, logger); err != nil {
		return nil, err
	}
	return store, nil
}

// CheckTable verifies the identity table exists, failing with ErrNotFound
// when it does not. Provisioning is a bootstrap concern of the environment,
// not of this layer.
func (s *Store) CheckTable(ctx context.Context) error {
	out, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{})
	if err != nil {
		return unavailable("list tables", err)
	}
	if !slices.Contains(out.TableNames, s.table.TableName) {
		return fmt.Errorf("%w: table %q does not exist", ErrNotFound, s.table.TableName)
	}
	return nil
}

// EnsureAdmin looks up the administrative account by email and creates it
// when absent. Lookup failures other than ErrNotFound are propagated, so an
// outage is never mistaken for a missing account.
func (s *Store) EnsureAdmin(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	if _, err := s.GetUserByEmail(ctx, cfg.AdminEmail); err == nil {
		logger.Info().Str("email", cfg.AdminEmail).Msg("db init: admin user exists")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	logger.Info().Str("email", cfg.AdminEmail).Msg("db init: creating admin user")
	admin, err := NewUser(NewUserInput{
		Email:     cfg.AdminEmail,
		FirstName: "Admin",
		LastName:  "Istrator",
		Roles:     Roles{RoleSuperuser},
		Password:  cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	if err := s.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.Info().Str("email", cfg.AdminEmail).Msg("db init: admin user created")
	return nil
}
