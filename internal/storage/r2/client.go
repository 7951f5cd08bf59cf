package r2

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arch-iv/archiv-api/config"
)

// Client talks to a Cloudflare R2 bucket through the S3 API.
type Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient
	bucket    string
	accountID string
	publicURL string
}

// New builds an R2 client from static credentials. No network call is made.
func New(ctx context.Context, c *config.StorageConfig) (*Client, error) {
	if c.Endpoint == "" || c.Bucket == "" {
		return nil, fmt.Errorf("r2: endpoint and bucket are required")
	}

	region := c.Region
	if region == "" {
		region = "auto"
	}

	awsConf, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")),
		awscfg.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		awscfg.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
	)
	if err != nil {
		return nil, fmt.Errorf("r2: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:        client,
		presigner: s3.NewPresignClient(client),
		bucket:    c.Bucket,
		accountID: c.AccountID,
		publicURL: strings.TrimRight(c.PublicURL, "/"),
	}, nil
}

// PresignPut returns a URL that accepts exactly one PUT of the given type and size.
func (c *Client) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("r2: presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Put uploads body under key.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := c.s3.PutObject(ctx, in); err != nil {
		return fmt.Errorf("r2: put %s: %w", key, err)
	}
	return nil
}

// PublicURL is where a stored object can be read from.
func (c *Client) PublicURL(key string) string {
	return PublicURL(c.publicURL, c.accountID, c.bucket, key)
}

// PublicURL prefers the configured CDN base and falls back to the account endpoint.
func PublicURL(base, accountID, bucket, key string) string {
	if base = strings.TrimRight(base, "/"); base != "" {
		return base + "/" + key
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", accountID, bucket, key)
}
