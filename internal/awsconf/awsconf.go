// Package awsconf loads AWS SDK configuration for the DynamoDB store and
// the S3 archive, with optional endpoint overrides for local emulators.
package awsconf

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Options select the region and an optional custom endpoint.
// When Endpoint is set static test credentials are used unless
// AccessKeyID is provided.
type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Load returns an aws.Config for the given options
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	var loaders []func(*config.LoadOptions) error

	if opts.Region != "" {
		loaders = append(loaders, config.WithRegion(opts.Region))
	}

	if opts.Endpoint != "" {
		region := opts.Region
		if region == "" {
			region = "us-east-1"
		}
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:       "aws",
				URL:               opts.Endpoint,
				SigningRegion:     region,
				HostnameImmutable: true,
			}, nil
		})
		loaders = append(loaders, config.WithEndpointResolverWithOptions(customResolver))

		key, secret := opts.AccessKeyID, opts.SecretAccessKey
		if key == "" {
			key, secret = "test", "test"
		}
		loaders = append(loaders, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	} else if opts.AccessKeyID != "" {
		loaders = append(loaders, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return cfg, nil
}
