package blobs

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object metadata keys written by Put and read by Info.
const (
	metaFilename = "original-filename"
	metaByteSize = "byte-size"
)

// S3API is the part of *s3.Client used by S3Store.
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store reads blob metadata from S3 objects stored under prefix+signedID.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := blobs.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "uploads/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates a new S3 blob store.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(signedID string) string {
	return s.prefix + signedID
}

// Info implements Store.
func (s *S3Store) Info(ctx context.Context, signedID string) (Info, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(signedID)),
	})
	if err != nil {
		var nf *types.NotFound
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nf) || stderrors.As(err, &nsk) {
			return Info{}, notFound(signedID)
		}
		return Info{}, storeFailure("head object "+s.key(signedID), err)
	}

	info := Info{
		Filename:    signedID,
		ContentType: "application/octet-stream",
		SignedID:    signedID,
	}
	if fn, ok := head.Metadata[metaFilename]; ok {
		info.Filename = fn
	}
	if head.ContentType != nil {
		info.ContentType = *head.ContentType
	}
	if head.ContentLength != nil {
		info.ByteSize = *head.ContentLength
	}
	// Metadata-only records carry their size explicitly.
	if raw, ok := head.Metadata[metaByteSize]; ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			info.ByteSize = n
		}
	}
	return info, nil
}

// Put writes an empty object carrying the blob metadata.
func (s *S3Store) Put(ctx context.Context, info Info) (Info, error) {
	if info.SignedID == "" {
		info.SignedID = NewSignedID()
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(info.SignedID)),
		ContentType: aws.String(info.ContentType),
		Metadata: map[string]string{
			metaFilename: info.Filename,
			metaByteSize: strconv.FormatInt(info.ByteSize, 10),
		},
	})
	if err != nil {
		return Info{}, storeFailure("put object "+s.key(info.SignedID), err)
	}
	return info, nil
}
