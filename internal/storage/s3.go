package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StorageType names the flavour of S3 API behind an endpoint.
type StorageType string

const (
	StorageTypeR2           StorageType = "r2"
	StorageTypeS3           StorageType = "s3"
	StorageTypeS3Compatible StorageType = "s3compatible"
)

// S3Config describes the bucket uploaded meme images are written to.
type S3Config struct {
	Type      StorageType
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// PublicURL overrides the path-style object URL, e.g. an R2.dev domain or CDN.
	PublicURL string
}

// S3Storage stores meme images in an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Storage struct {
	client  *s3.Client
	kind    StorageType
	bucket  string
	baseURL string
}

// NewS3Storage builds a path-style S3 client for cfg. No request is made until first use.
func NewS3Storage(cfg *S3Config) (*S3Storage, error) {
	host := normalizeEndpoint(cfg.Endpoint)
	endpoint := schemeFor(cfg.UseSSL) + "://" + host

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(regionFor(cfg)),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	baseURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = endpoint + "/" + cfg.Bucket
	}

	return &S3Storage{
		client:  client,
		kind:    cfg.Type,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
	}, nil
}

func schemeFor(useSSL bool) string {
	if useSSL {
		return "https"
	}
	return "http"
}

// regionFor returns the configured region, or the one each provider accepts by default.
func regionFor(cfg *S3Config) string {
	switch {
	case cfg.Region != "":
		return cfg.Region
	case cfg.Type == StorageTypeR2:
		return "auto"
	default:
		return "us-east-1"
	}
}

// normalizeEndpoint strips any scheme and path, leaving host[:port].
func normalizeEndpoint(endpoint string) string {
	if i := strings.Index(endpoint, "://"); i != -1 {
		endpoint = endpoint[i+3:]
	}
	host, _, _ := strings.Cut(endpoint, "/")
	return host
}

// EnsureBucket creates the bucket when missing. R2 buckets must be created in the dashboard.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	if s.kind == StorageTypeR2 {
		return fmt.Errorf("bucket %s does not exist, please create it in R2 dashboard", s.bucket)
	}
	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Storage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		// Keys are content hashes, so objects never change.
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Storage) GetURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", key, err)
}

// isNotFound matches both the typed S3 error and a bare 404 from providers
// that answer HEAD without an error code.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
