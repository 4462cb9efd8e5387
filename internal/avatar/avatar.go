// Package avatar stores profile images in S3-compatible object storage.
package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const MaxSize = 5 << 20

var (
	ErrDisabled    = errors.New("profile image storage is not configured")
	ErrTooLarge    = fmt.Errorf("image exceeds %d bytes", MaxSize)
	ErrUnsupported = errors.New("unsupported image type")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	URLExpiry     time.Duration
}

func (c Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	cfg     Config
	client  s3Client
	presign presigner
}

// New returns a Store. Without bucket credentials every upload fails with
// ErrDisabled.
func New(cfg Config) *Store {
	s := &Store{cfg: cfg}
	if cfg.URLExpiry <= 0 {
		s.cfg.URLExpiry = 7 * 24 * time.Hour
	}
	if cfg.Enabled() {
		client := newS3Client(cfg)
		s.client = client
		s.presign = s3.NewPresignClient(client)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func (s *Store) Enabled() bool {
	return s.client != nil
}

// Upload validates and stores an image for userID and returns the URL it
// can be downloaded from.
func (s *Store) Upload(ctx context.Context, userID int64, r io.Reader) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return "", fmt.Errorf("%s: %w", mtype.String(), ErrUnsupported)
	}

	key := fmt.Sprintf("users/%d/avatar-%s%s", userID, uuid.NewString(), mtype.Extension())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mtype.String()),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	return s.URL(ctx, key)
}

// URL returns the download URL for key: under the public base URL when one
// is configured, otherwise a presigned GET.
func (s *Store) URL(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key, nil
	}
	if s.presign == nil {
		return "", ErrDisabled
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.URLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign url: %w", err)
	}
	return req.URL, nil
}
