package utils

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"novelweaver/config"
)

// S3Uploader pushes workspace covers and exported books to object storage.
type S3Uploader struct {
	client *s3.S3
	bucket string
}

// NewS3Uploader returns nil when no credentials are configured; callers fall
// back to inline storage.
func NewS3Uploader(cfg *config.Config) (*S3Uploader, error) {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Endpoint:    aws.String(cfg.S3Endpoint),
		Region:      aws.String("sgp1"),
	})
	if err != nil {
		return nil, fmt.Errorf("initializing s3 session: %w", err)
	}

	return &S3Uploader{client: s3.New(sess), bucket: cfg.S3Bucket}, nil
}

// Upload stores data under folder/name and returns the public URL.
func (u *S3Uploader) Upload(folder, name, contentType string, data []byte) (string, error) {
	key := folder + "/" + name

	_, err := u.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}

	return fmt.Sprintf("%s/%s/%s", u.client.Endpoint, u.bucket, key), nil
}
