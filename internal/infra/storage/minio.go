package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/memory"
)

const (
	recordPrefix = "analyses/"
	ownerPrefix  = "owners/"
)

// Store keeps each record as a JSON object plus a copy under its owner's prefix
// so history is a single prefix listing.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string

	// seams for tests; nil means the MinIO client
	list func(ctx context.Context, prefix string) <-chan minio.ObjectInfo
	get  func(ctx context.Context, key string) (*domain.Record, error)
}

// New connects to MinIO and makes sure the bucket exists.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

func recordKey(id string) string { return recordPrefix + url.PathEscape(id) + ".json" }

func ownerDir(ownerID string) string { return ownerPrefix + url.PathEscape(ownerID) + "/" }

func ownerKey(ownerID, id string) string { return ownerDir(ownerID) + url.PathEscape(id) + ".json" }

func (s *Store) put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (s *Store) Save(ctx context.Context, a *domain.Record) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := s.put(ctx, recordKey(a.ID), body); err != nil {
		return fmt.Errorf("put %s: %w", a.ID, err)
	}
	if err := s.put(ctx, ownerKey(a.OwnerID, a.ID), body); err != nil {
		return fmt.Errorf("index %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (*domain.Record, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var a domain.Record
	if err := json.NewDecoder(obj).Decode(&a); err != nil {
		// GetObject is lazy; a missing key surfaces on first read
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	return s.read(ctx, recordKey(id))
}

// ListByOwner reads every object under the owner's prefix, then sorts and pages.
func (s *Store) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	// stops the listing goroutine when the loop returns early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	list, get := s.list, s.get
	if list == nil {
		list = func(ctx context.Context, prefix string) <-chan minio.ObjectInfo {
			return s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix})
		}
	}
	if get == nil {
		get = s.read
	}

	out := []*domain.Record{}
	for info := range list(ctx, ownerDir(ownerID)) {
		if info.Err != nil {
			return nil, info.Err
		}
		if path.Ext(info.Key) != ".json" {
			continue
		}
		a, err := get(ctx, info.Key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", info.Key, err)
		}
		if a != nil && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	memory.SortNewestFirst(out)
	return memory.Page(out, limit, offset), nil
}

func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}
