package preview

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/bardfile/internal/config"
	"github.com/vango-dev/bardfile/internal/errors"
	"github.com/vango-dev/bardfile/pkg/blobs"
)

// OpenStore builds the blob store cfg asks for, wrapped in a lookup cache
// when blobs.cacheTTL is set. The returned close function releases it.
func OpenStore(cfg *config.Config) (blobs.Store, func() error, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, nil, err
	}

	var (
		store   blobs.Store
		closeFn = func() error { return nil }
	)
	switch cfg.Blobs.Store {
	case config.StoreMemory:
		store = blobs.NewMemoryStore()
	case config.StoreBadger:
		dir := cfg.DataDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.New(errors.ErrBlobStore).Wrap(err)
		}
		bs, err := blobs.OpenBadgerStore(dir)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = bs, bs.Close
	case config.StoreS3:
		store = blobs.NewS3Store(newS3Client(cfg), cfg.Blobs.Bucket, cfg.Blobs.Prefix)
	default:
		return nil, nil, errors.New(errors.ErrInvalidConfig).
			WithDetailf("Unknown blob store %q", cfg.Blobs.Store)
	}

	if ttl > 0 {
		store = blobs.NewCachedStore(store, ttl)
	}
	return store, closeFn, nil
}

// newS3Client builds a client from the config's region and the standard
// AWS_* environment variables. BARDFILE_S3_ENDPOINT points it at an S3
// compatible server.
func newS3Client(cfg *config.Config) *s3.Client {
	region := cfg.Blobs.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if endpoint := os.Getenv("BARDFILE_S3_ENDPOINT"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
