package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/cppla/aiblog/config"
	"github.com/cppla/aiblog/utils"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3 compatible bucket (AWS, Cloudflare R2, MinIO).
type S3Store struct {
	client    S3API
	bucket    string
	publicURL string
	maxBytes  int64
	now       func() time.Time
}

// NewS3Store creates a client from cfg. An empty endpoint uses the AWS default for the region.
func NewS3Store(cfg config.AppConfig, maxBytes int64) *S3Store {
	opts := s3.Options{
		Region:       cfg.S3Region,
		UsePathStyle: cfg.S3UsePathStyle,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}
	return newS3Store(s3.New(opts), cfg.S3Bucket, cfg.S3PublicURL, maxBytes)
}

func newS3Store(client S3API, bucket, publicURL string, maxBytes int64) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

func (s *S3Store) objectKey(ownerID uint, ext string) string {
	return fmt.Sprintf("uploads/%d/%d_%s%s", ownerID, s.now().Unix(), uuid.NewString(), ext)
}

func (s *S3Store) Save(ctx context.Context, ownerID uint, fh *multipart.FileHeader) (string, error) {
	img, err := readImage(fh, s.maxBytes)
	if err != nil {
		return "", err
	}

	key := s.objectKey(ownerID, img.ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        img.reader(),
		ContentType: aws.String(img.contentType),
	})
	if err != nil {
		return "", utils.Internal(50065, "failed to upload image", err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok || key == "" {
		return ErrBadImagePath
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
