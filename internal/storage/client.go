// internal/storage/client.go
// Package storage provides the S3-compatible (Cloudflare R2) client and key layout.
package storage

import (
	"context"
	"fmt"

	"adreel/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewClient creates an S3 client for the configured bucket endpoint.
// Path-style addressing keeps custom endpoints (R2, MinIO) working.
func NewClient(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	endpoint := cfg.ResolvedEndpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is not configured (set storage.account_id or storage.endpoint)")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}
