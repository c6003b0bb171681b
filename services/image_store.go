package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/zakdoc/blog-backend/config"
)

// MaxImageSize bounds featured image uploads
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageContentTypes lists the accepted upload types
func ImageContentTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageStore uploads featured images to S3 and returns their public URL
type ImageStore struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewImageStore returns nil when S3_BUCKET is not configured
func NewImageStore(ctx context.Context, cfg map[string]string) (*ImageStore, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, nil
	}
	region := config.GetString(cfg, "AWS_REGION", "us-east-1")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	baseURL := config.GetString(cfg, "S3_PUBLIC_BASE_URL", fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region))
	return &ImageStore{client: s3.NewFromConfig(awsCfg), bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload stores data under a fresh key and returns the URL readers fetch it from
func (s *ImageStore) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}
	key := path.Join("blogs", "featured", uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return s.baseURL + "/" + key, nil
}
