package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/config"
)

// Object key prefixes. Originals are uploaded by guests via presigned
// URLs; the worker writes the medium and small renditions.
const (
	PrefixOriginal = "original"
	PrefixMedium   = "medium"
	PrefixSmall    = "small"
	PrefixAssets   = "organization-assets"
)

// PresignExpiry is how long a presigned upload URL stays valid.
const PresignExpiry = time.Hour

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

func NewS3Storage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3.Bucket,
		logger:  logger,
	}, nil
}

// PhotoKey builds the object key for an event photo in the given size
// class.
func PhotoKey(prefix, organization, eventID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", prefix, organization, eventID, fileName)
}

// PresignPut returns a presigned PUT URL for a direct client upload.
func (s *S3Storage) PresignPut(ctx context.Context, key string, size int64) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String("image/jpeg"),
		ContentLength: aws.Int64(size),
	}, func(o *s3.PresignOptions) {
		o.Expires = PresignExpiry
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}

// ListPage lists up to maxKeys object keys under prefix, resuming from
// marker when set. Returns the keys and the continuation marker for the
// next page, empty when the listing is complete.
func (s *S3Storage) ListPage(ctx context.Context, prefix, marker string, maxKeys int32) ([]string, string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(maxKeys),
	}
	if marker != "" {
		input.ContinuationToken = aws.String(marker)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("list objects: %w", err)
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}

	next := ""
	if aws.ToBool(out.IsTruncated) {
		next = aws.ToString(out.NextContinuationToken)
	}
	return keys, next, nil
}

// GetObject streams an object's body. Caller must close it.
func (s *S3Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}

// PutObject writes an object.
func (s *S3Storage) PutObject(ctx context.Context, key string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// DeleteObject removes a single object.
func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteObjects removes a batch of objects in one call.
func (s *S3Storage) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}
	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return fmt.Errorf("delete objects: %w", err)
	}
	s.logger.Info("deleted objects from s3", zap.Int("count", len(out.Deleted)))
	return nil
}

// DeletePrefix removes every object under the given prefix, paging
// through the listing until it is exhausted.
func (s *S3Storage) DeletePrefix(ctx context.Context, prefix string) error {
	marker := ""
	for {
		keys, next, err := s.ListPage(ctx, prefix, marker, 1000)
		if err != nil {
			return err
		}
		if err := s.DeleteObjects(ctx, keys); err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		marker = next
	}
}
