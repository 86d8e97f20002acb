package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stackit-qa/stackit-client/internal/credential"
)

const objectStoreCredentialPrefix = "credentials"

// ObjectStoreConfig captures configuration for the object storage-backed credential store.
type ObjectStoreConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
	UseSSL    bool
	PathStyle bool
}

// ObjectTokenStore persists each profile's pair as a JSON object in an S3-compatible bucket.
type ObjectTokenStore struct {
	client *minio.Client
	cfg    ObjectStoreConfig
}

// NewObjectTokenStore initializes an object storage backed credential store.
func NewObjectTokenStore(cfg ObjectStoreConfig) (*ObjectTokenStore, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Bucket = strings.TrimSpace(cfg.Bucket)
	cfg.AccessKey = strings.TrimSpace(cfg.AccessKey)
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")

	switch {
	case cfg.Endpoint == "":
		return nil, fmt.Errorf("object store: endpoint is required")
	case cfg.Bucket == "":
		return nil, fmt.Errorf("object store: bucket is required")
	case cfg.AccessKey == "":
		return nil, fmt.Errorf("object store: access key is required")
	case cfg.SecretKey == "":
		return nil, fmt.Errorf("object store: secret key is required")
	}

	options := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		options.BucketLookup = minio.BucketLookupPath
	}
	client, err := minio.New(cfg.Endpoint, options)
	if err != nil {
		return nil, fmt.Errorf("object store: create client: %w", err)
	}
	return &ObjectTokenStore{client: client, cfg: cfg}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ObjectTokenStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("object store: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("object store: create bucket: %w", err)
	}
	return nil
}

// Load fetches profile's object. A missing object yields a zero pair.
func (s *ObjectTokenStore) Load(ctx context.Context, profile string) (credential.Pair, error) {
	key := s.objectKey(profile)
	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isObjectNotFound(err) {
			return credential.Pair{}, nil
		}
		return credential.Pair{}, fmt.Errorf("object store: fetch %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isObjectNotFound(err) {
			return credential.Pair{}, nil
		}
		return credential.Pair{}, fmt.Errorf("object store: read %s: %w", key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return credential.Pair{}, nil
	}
	var pair credential.Pair
	if err = json.Unmarshal(data, &pair); err != nil {
		return credential.Pair{}, fmt.Errorf("object store: decode %s: %w", key, err)
	}
	return pair, nil
}

// Save uploads profile's pair.
func (s *ObjectTokenStore) Save(ctx context.Context, profile string, pair credential.Pair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("object store: marshal: %w", err)
	}
	key := s.objectKey(profile)
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("object store: put object %s: %w", key, err)
	}
	return nil
}

// Delete removes profile's object. A missing object is not an error.
func (s *ObjectTokenStore) Delete(ctx context.Context, profile string) error {
	key := s.objectKey(profile)
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil && !isObjectNotFound(err) {
		return fmt.Errorf("object store: delete object %s: %w", key, err)
	}
	return nil
}

func (s *ObjectTokenStore) objectKey(profile string) string {
	return prefixedKey(s.cfg.Prefix, objectStoreCredentialPrefix+"/"+strings.Trim(profile, "/")+".json")
}

func prefixedKey(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return strings.TrimLeft(prefix+"/"+key, "/")
}

func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound {
		return true
	}
	switch resp.Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return true
	}
	return false
}

var _ credential.Backend = (*ObjectTokenStore)(nil)
