// Package config loads environment-driven configuration and builds a
// configured birdtag service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
	dynamostore "github.com/tanagerlabs/birdtag/pkg/birdtag/store/dynamo"
	memorystore "github.com/tanagerlabs/birdtag/pkg/birdtag/store/memory"
	postgresstore "github.com/tanagerlabs/birdtag/pkg/birdtag/store/postgres"
	memorystorage "github.com/tanagerlabs/birdtag/pkg/birdtag/storage/memory"
	s3storage "github.com/tanagerlabs/birdtag/pkg/birdtag/storage/s3"
)

// ServerConfig represents server configuration for the birdtag service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	Database DatabaseConfig
	AWS      AWSConfig
	Storage  StorageConfig
	Sample   SamplePollConfig

	// LinkTTL is the lifetime of presigned links.
	LinkTTL time.Duration `env:"LINK_TTL" env-default:"5h"`

	// JWTSigningKey guards mutating routes when set. Empty disables auth.
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// DatabaseConfig selects and configures the item store backend
type DatabaseConfig struct {
	Type  string `env:"DATABASE_TYPE" env-default:"memory"` // memory, dynamo, postgres
	URL   string `env:"DATABASE_URL"`
	Table string `env:"DYNAMO_TABLE" env-default:"BirdMediaMetadata"`
}

// AWSConfig carries shared AWS client settings
type AWSConfig struct {
	Region          string `env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"AWS_ENDPOINT"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

// StorageConfig names the blob stores the pipeline uses
type StorageConfig struct {
	Type string `env:"STORAGE_TYPE" env-default:"memory"` // memory, s3

	MediaBucket     string `env:"MEDIA_BUCKET" env-default:"birdtag-media"`
	ThumbnailBucket string `env:"THUMBNAIL_BUCKET" env-default:"birdtag-thumbnails"`
	ResultBucket    string `env:"RESULT_BUCKET" env-default:"birdtag-results"`

	CreateBuckets bool `env:"STORAGE_CREATE_BUCKETS" env-default:"false"`
}

// SamplePollConfig bounds how long a sample search waits for detection
type SamplePollConfig struct {
	Attempts int           `env:"SAMPLE_POLL_ATTEMPTS" env-default:"15"`
	Interval time.Duration `env:"SAMPLE_POLL_INTERVAL" env-default:"2s"`
}

// Load reads configuration from the environment and validates it
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.Database.Type {
	case "memory", "dynamo":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required when using postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Storage.Type != "memory" && c.Storage.Type != "s3" {
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.MediaBucket == "" || c.Storage.ThumbnailBucket == "" || c.Storage.ResultBucket == "" {
		return errors.New("media, thumbnail and result buckets are all required")
	}
	if c.Sample.Attempts <= 0 {
		return errors.New("sample poll attempts must be positive")
	}
	return nil
}

// BuildService creates a Service instance from the server configuration.
// Backend clients are constructed once here and shared for the process
// lifetime.
func (c *ServerConfig) BuildService() (birdtag.Service, error) {
	items, err := c.buildItemStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build item store: %w", err)
	}

	options := []birdtag.Option{
		birdtag.WithItemStore(items),
		birdtag.WithUploadStore(c.Storage.MediaBucket),
		birdtag.WithLinkTTL(c.LinkTTL),
		birdtag.WithPollPolicy(c.Sample.Attempts, c.Sample.Interval),
	}

	for _, bucket := range c.bucketNames() {
		store, err := c.buildBlobStore(bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to build blob store %s: %w", bucket, err)
		}
		options = append(options, birdtag.WithBlobStore(bucket, store))
	}

	return birdtag.New(options...)
}

// bucketNames returns the distinct configured bucket names.
func (c *ServerConfig) bucketNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, name := range []string{c.Storage.MediaBucket, c.Storage.ThumbnailBucket, c.Storage.ResultBucket} {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// buildItemStore creates the metadata table backend
func (c *ServerConfig) buildItemStore() (birdtag.ItemStore, error) {
	switch c.Database.Type {
	case "memory":
		return memorystore.New(), nil

	case "dynamo":
		client, err := c.buildDynamoClient()
		if err != nil {
			return nil, err
		}
		return dynamostore.New(client, c.Database.Table), nil

	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return postgresstore.NewWithPool(pool), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
}

func (c *ServerConfig) buildDynamoClient() (*dynamodb.Client, error) {
	awsCfg, err := c.loadAWSConfig()
	if err != nil {
		return nil, err
	}
	var opts []func(*dynamodb.Options)
	if c.AWS.Endpoint != "" {
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(c.AWS.Endpoint)
		})
	}
	return dynamodb.NewFromConfig(awsCfg, opts...), nil
}

func (c *ServerConfig) loadAWSConfig() (aws.Config, error) {
	if c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey != "" {
		return awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(c.AWS.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				c.AWS.AccessKeyID,
				c.AWS.SecretAccessKey,
				"",
			)),
		)
	}
	return awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(c.AWS.Region),
	)
}

// buildBlobStore creates one blob store backend
func (c *ServerConfig) buildBlobStore(bucket string) (birdtag.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(bucket), nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.AWS.Region,
			Bucket:                 bucket,
			AccessKeyID:            c.AWS.AccessKeyID,
			SecretAccessKey:        c.AWS.SecretAccessKey,
			Endpoint:               c.AWS.Endpoint,
			UsePathStyle:           c.AWS.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.CreateBuckets,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
