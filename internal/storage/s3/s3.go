// Package s3 legt Exporte in einem S3-kompatiblen Bucket (AWS, MinIO, ...) ab.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"hufschlaeger.net/basecamp-cardtables/internal/config"
	"hufschlaeger.net/basecamp-cardtables/internal/logger"
)

var ErrBucketNotFound = errors.New("bucket does not exist")

// Uploader ist alles, was der Exporter von einem Storage braucht.
type Uploader interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

type Client struct {
	api    *awss3.Client
	bucket string
	prefix string
	logger *logger.Logger
}

// NewClient baut einen S3 Client. Ohne Endpoint wird die AWS Standardauflösung benutzt,
// ohne Access Key die Default Credential Chain.
func NewClient(ctx context.Context, cfg config.S3Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	if cfg.Endpoint != "" {
		if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
			return nil, fmt.Errorf("invalid S3 endpoint: %w", err)
		}
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO & Co. kennen die neuen CRC Checksums nicht immer
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Client{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger.Default().WithFields(zap.String("bucket", cfg.Bucket)),
	}, nil
}

func (c *Client) EnsureBucketExists(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchBucket") {
			return fmt.Errorf("bucket %s: %w", c.bucket, ErrBucketNotFound)
		}
		return fmt.Errorf("error checking bucket: %w", err)
	}
	return nil
}

// Put speichert body unter prefix/name und gibt den vollständigen Key zurück.
func (c *Client) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	key := c.Key(name)

	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading %s to S3: %w", key, err)
	}

	c.logger.Info("export uploaded", zap.String("key", key), zap.Int("bytes", len(body)))
	return key, nil
}

// Key setzt Prefix und Name zusammen.
func (c *Client) Key(name string) string {
	name = strings.TrimPrefix(name, "/")
	if c.prefix == "" {
		return name
	}
	return path.Join(strings.Trim(c.prefix, "/"), name)
}
