package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"homebiz_backend/pkg/utils/image"
)

// Client uploads processed product images to S3.
type Client struct {
	s3     *s3.Client
	bucket string
	region string
}

func NewClient(ctx context.Context, bucket, region string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	// Explicit keys win over the default chain when provided.
	if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				accessKey,
				os.Getenv("AWS_SECRET_ACCESS_KEY"),
				"",
			)))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	return &Client{
		s3:     s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// UploadProductImage validates, re-encodes and stores the image, returning
// the public URL.
func (c *Client) UploadProductImage(ctx context.Context, file *multipart.FileHeader, businessID, productID uint) (string, error) {
	buf, format, err := image.ProcessImage(file)
	if err != nil {
		return "", err
	}

	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}

	key := fmt.Sprintf("products/%d/%d-%s.%s", businessID, productID, uuid.New().String(), ext)

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/" + format),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload image: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key), nil
}
