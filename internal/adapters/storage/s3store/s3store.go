package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/domain"
)

// Options configures the gateway against any S3-compatible store. The
// public base URL must differ from the private endpoint: browsers fetch
// images from the former, the SDK talks to the latter.
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

type Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func New(ctx context.Context, o Options) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, domain.NewStorageError("config", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.BaseEndpoint = aws.String(o.Endpoint)
		so.UsePathStyle = true
	})
	return &Store{
		client:    client,
		bucket:    o.Bucket,
		publicURL: strings.TrimSuffix(o.PublicURL, "/"),
	}, nil
}

// Upload stores the bytes under a fresh key built from a random id plus
// the original extension and returns the public URL. Collisions are not
// retried; the id space makes them negligible.
func (s *Store) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", domain.NewStorageError("upload", err)
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes every key, permanently. Per-key failures are collected
// so the caller can decide whether partial failure blocks anything;
// deleting a key that is already gone is not an error here.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var errs []error
	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("object delete failed")
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return domain.NewStorageError("delete", errors.Join(errs...))
	}
	return nil
}

// Disabled stands in when the object store is not configured: every call
// fails hard instead of the process refusing to boot.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, []byte) (string, error) {
	return "", domain.NewStorageError("upload", errors.New("object storage not configured"))
}

func (Disabled) Delete(context.Context, []string) error {
	return domain.NewStorageError("delete", errors.New("object storage not configured"))
}
