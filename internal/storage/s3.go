package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string // e.g., "http://localhost:9000" for MinIO
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
}

// PayloadArchive stores raw vendor payloads in S3-compatible storage so
// scrapes can be reprocessed after normalizer changes
type PayloadArchive struct {
	client *s3.Client
	bucket string
}

// NewPayloadArchive creates a new S3-backed payload archive
func NewPayloadArchive(cfg S3Config) (*PayloadArchive, error) {
	// Create S3 client with static credentials and custom endpoint
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true, // Required for MinIO
	})

	return &PayloadArchive{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// ArchivePayload stores one raw payload under a date-partitioned key
func (a *PayloadArchive) ArchivePayload(ctx context.Context, platform entity.Platform, username string, payload []byte) error {
	key := fmt.Sprintf("payloads/%s/%s/%s/%s.json",
		time.Now().Format("2006/01/02"),
		platform,
		username,
		uuid.New().String(),
	)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return fmt.Errorf("uploading to s3: %w", err)
	}

	return nil
}
