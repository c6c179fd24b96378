/*
Package storage persists avatar blobs.

This file implements the S3-compatible BlobStore on top of aws-sdk-go-v2,
mapping missing objects to ErrNotFound.
*/
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"moonhub/internal/pkg/logx"
)

const avatarContentType = "application/octet-stream"

// s3Store implements BlobStore on an S3-compatible bucket. A PutObject
// replaces the object atomically, so readers never see partial uploads.
type s3Store struct {
	bucket   string
	client   *s3.Client
	uploader *manager.Uploader
	logger   zerolog.Logger
}

// newS3Store initializes the S3 client using a custom configuration that supports S3-compatible endpoints.
func newS3Store(ctx context.Context, cfg ServiceConfig) (*s3Store, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client configuration: %w", err)
	}

	// Create S3 Client with Custom Endpoint Resolver.
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &s3Store{
		bucket:   cfg.S3BucketName,
		client:   client,
		uploader: manager.NewUploader(client),
		logger:   logx.Component("S3Store"),
	}, nil
}

// Put uploads the avatar, replacing any previous object.
func (s *s3Store) Put(ctx context.Context, id uuid.UUID, data []byte) error {
	key := objectKey(id)

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(avatarContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return s.fail("put", id, err)
	}

	return nil
}

// Get downloads the whole avatar object.
func (s *s3Store) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	body, err := s.open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, s.fail("get", id, err)
	}
	return data, nil
}

// Delete removes the object. S3 deletes are idempotent, so presence is checked first.
func (s *s3Store) Delete(ctx context.Context, id uuid.UUID) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	key := objectKey(id)
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return s.fail("delete", id, err)
	}

	return nil
}

// Hash streams the object body through SHA-256.
func (s *s3Store) Hash(ctx context.Context, id uuid.UUID) (string, error) {
	body, err := s.open(ctx, id)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return hashReader(body, func(err error) error { return s.fail("hash", id, err) })
}

// Exists issues a HEAD request for the object.
func (s *s3Store) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	key := objectKey(id)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, s.fail("head", id, err)
	}

	return true, nil
}

func (s *s3Store) open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	key := objectKey(id)

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, s.fail("get", id, err)
	}

	return resp.Body, nil
}

func (s *s3Store) fail(op string, id uuid.UUID, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("user_id", id.String()).Str("bucket", s.bucket).Msg("S3 avatar operation failed")
	return &IOError{Op: op, Key: objectKey(id), Err: err}
}
