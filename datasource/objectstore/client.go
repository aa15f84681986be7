package objectstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Scheme is the URL scheme served by this package
const Scheme = "s3"

// Config holds object store connection settings.
type Config struct {
	Endpoint  string // e.g. "s3.amazonaws.com" or "minio:9000"
	Region    string
	UseSSL    bool
	Anonymous bool // public buckets (such as datashader-data) need no credentials
}

// ConfigFromEnv builds a Config from SKYSHADE_S3_* environment variables
func ConfigFromEnv() Config {
	cfg := Config{
		Endpoint:  os.Getenv("SKYSHADE_S3_ENDPOINT"),
		Region:    os.Getenv("SKYSHADE_S3_REGION"),
		UseSSL:    os.Getenv("SKYSHADE_S3_INSECURE") == "",
		Anonymous: os.Getenv("AWS_ACCESS_KEY_ID") == "",
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "s3.amazonaws.com"
	}
	return cfg
}

// NewClient creates a minio client for the given Config. Credentials come from the standard AWS environment variables.
func NewClient(cfg Config) (*minio.Client, error) {
	creds := credentials.NewStaticV4(os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), os.Getenv("AWS_SESSION_TOKEN"))
	if cfg.Anonymous {
		creds = credentials.NewStaticV4("", "", "")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return mc, nil
}

// ParseURL splits an s3://bucket/prefix location into its bucket and key prefix
func ParseURL(location string) (bucket string, prefix string, err error) {
	rest := strings.TrimPrefix(location, Scheme+"://")
	if rest == location {
		return "", "", fmt.Errorf("%s is not an %s:// location", location, Scheme)
	}
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if bucket == "" {
		return "", "", fmt.Errorf("%s does not name a bucket", location)
	}
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix, nil
}

// isPartKey matches parquet part objects, skipping hidden objects and metadata sidecars
func isPartKey(key string) bool {
	base := path.Base(key)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return false
	}
	ext := strings.ToLower(path.Ext(base))
	return ext == ".parquet" || ext == ".parq"
}

// listPartKeys lists the parquet part objects under a location. A location naming a single
// object is returned as-is.
func listPartKeys(ctx context.Context, mc *minio.Client, bucket string, prefix string) ([]string, error) {
	keys := []string{}
	for obj := range mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == prefix || isPartKey(obj.Key) {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// Exists reports whether any object exists under an s3:// location. It is suitable for use
// with datasource.Resolver.WithScheme.
func Exists(cfg Config) func(ctx context.Context, location string) (bool, error) {
	return func(ctx context.Context, location string) (bool, error) {
		bucket, prefix, err := ParseURL(location)
		if err != nil {
			return false, err
		}
		mc, err := NewClient(cfg)
		if err != nil {
			return false, err
		}
		for obj := range mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true, MaxKeys: 1}) {
			if obj.Err != nil {
				if minio.ToErrorResponse(obj.Err).Code == "NoSuchBucket" {
					return false, nil
				}
				return false, obj.Err
			}
			return true, nil
		}
		return false, nil
	}
}
