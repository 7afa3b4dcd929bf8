// Package archive keeps a copy of every uploaded voice memo in S3 so that
// transcripts can be re-run or audited later.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/voicedesk/internal/config"
)

const defaultFilename = "audio.wav"

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads raw audio. A Store with no bucket does nothing.
type Store struct {
	bucket   string
	s3Client S3API
	now      func() time.Time
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string) *Store {
	return &Store{bucket: bucket, s3Client: s3Client, now: time.Now}
}

// Enabled returns true if archival is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// PutAudio uploads audio under a date-partitioned key and returns that key.
// It returns "" without error when archival is disabled.
func (s *Store) PutAudio(ctx context.Context, sessionID uuid.UUID, filename string, audio []byte) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	now := s.now().UTC()
	key := fmt.Sprintf("audio/%d/%02d/%02d/%s/%d-%s",
		now.Year(), now.Month(), now.Day(), sessionID, now.UnixNano(), cleanFilename(filename))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(audio),
		ContentType: aws.String(http.DetectContentType(audio)),
		Metadata:    map[string]string{"session-uuid": sessionID.String()},
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	slog.DebugContext(ctx, "archived audio to S3",
		"session_uuid", sessionID,
		"s3_key", key,
		"bytes", len(audio),
	)
	return key, nil
}

// cleanFilename keeps only the base name so client input cannot shape the key prefix.
func cleanFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == "/" {
		return defaultFilename
	}
	return name
}

// NewS3Client builds an S3 client from the archive settings. A custom
// endpoint (LocalStack, MinIO) switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg config.ArchiveConfig) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if strings.TrimSpace(cfg.AccessKeyID) != "" && strings.TrimSpace(cfg.SecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	}), nil
}
