// Package publish uploads rendered frames to S3-compatible storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// UploadTimeout bounds a single PutObject call.
const UploadTimeout = 10 * time.Second

// Config holds the S3 connection settings.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// ACL is optional, e.g. "public-read".
	ACL string
}

// ConfigFromEnv reads S3_* variables. Call godotenv.Load first to pick up .env.
func ConfigFromEnv() Config {
	return Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    os.Getenv("S3_REGION"),
		Bucket:    os.Getenv("S3_BUCKET"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		ACL:       os.Getenv("S3_ACL"),
	}
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var missing []string
	if c.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.Region == "" {
		missing = append(missing, "S3_REGION")
	}
	if len(missing) > 0 {
		return fmt.Errorf("s3 config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Uploader puts objects into one bucket.
type Uploader struct {
	client s3iface.S3API
	bucket string
	acl    string
}

// NewUploader creates an S3 session. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewUploader(cfg Config) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 session: %w", err)
	}
	return newUploader(s3.New(sess), cfg), nil
}

func newUploader(client s3iface.S3API, cfg Config) *Uploader {
	return &Uploader{client: client, bucket: cfg.Bucket, acl: cfg.ACL}
}

// Upload stores data under key.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte) error {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return errors.New("upload: empty key")
	}
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	in := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(key)),
	}
	if u.acl != "" {
		in.ACL = aws.String(u.acl)
	}
	if _, err := u.client.PutObjectWithContext(ctx, in); err != nil {
		return fmt.Errorf("upload %s to %s: %w", key, u.bucket, err)
	}
	return nil
}

// ContentType maps an object key to its image MIME type.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
