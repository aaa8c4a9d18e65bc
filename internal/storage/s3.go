package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultPresignExpiry is how long a returned download link stays valid
const DefaultPresignExpiry = 15 * time.Minute

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner creates time-limited download URLs
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error)
}

// PresignedRequest is the part of a presigned request callers need
type PresignedRequest struct {
	URL string
}

type s3Presigner struct {
	client *s3.PresignClient
}

func (p *s3Presigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*PresignedRequest, error) {
	req, err := p.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return nil, err
	}
	return &PresignedRequest{URL: req.URL}, nil
}

// S3Store uploads documents to a bucket and returns presigned download links
type S3Store struct {
	client    S3API
	presigner Presigner
	bucket    string
	prefix    string
	expiry    time.Duration
}

// NewS3Store creates a store from an AWS config
func NewS3Store(cfg aws.Config, bucket, prefix string, usePathStyle bool) *S3Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = usePathStyle
	})
	return NewS3StoreWithClient(client, &s3Presigner{client: s3.NewPresignClient(client)}, bucket, prefix)
}

// NewS3StoreWithClient creates a store over existing clients
func NewS3StoreWithClient(client S3API, presigner Presigner, bucket, prefix string) *S3Store {
	return &S3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		prefix:    prefix,
		expiry:    DefaultPresignExpiry,
	}
}

// Save uploads pdf under prefix/filename
func (s *S3Store) Save(ctx context.Context, filename string, pdf []byte) (string, error) {
	key := path.Join(s.prefix, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(pdf),
		ContentType:   aws.String("application/pdf"),
		ContentLength: aws.Int64(int64(len(pdf))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}

	return req.URL, nil
}
