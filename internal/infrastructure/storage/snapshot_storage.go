package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wildfire-monitoring-system/internal/domain"
)

const snapshotPrefix = "snapshots"

// MinIOConfig holds the object storage connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SnapshotStorage exports status snapshots to a MinIO bucket
type SnapshotStorage struct {
	minioClient *minio.Client
	bucketName  string
}

// NewSnapshotStorage connects to MinIO and creates the bucket if needed
func NewSnapshotStorage(ctx context.Context, cfg MinIOConfig) (*SnapshotStorage, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &SnapshotStorage{
		minioClient: minioClient,
		bucketName:  cfg.Bucket,
	}, nil
}

// SaveSnapshot writes the update as JSON and returns its object key
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, update domain.StatusUpdate) (string, error) {
	data, err := json.Marshal(update)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	objectKey := snapshotKey(update.Timestamp)

	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"high-risk-areas": fmt.Sprint(len(update.HighRiskAreas)),
			"active-missions": fmt.Sprint(len(update.FleetStatus.ActiveMissions)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	return objectKey, nil
}

// ListSnapshotKeys lists snapshot objects under prefix
func (s *SnapshotStorage) ListSnapshotKeys(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		prefix = snapshotPrefix + "/"
	}

	objectCh := s.minioClient.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	return keys, nil
}

// DayPrefix returns the listing prefix for snapshots taken on t's UTC date
func DayPrefix(t time.Time) string {
	return path.Join(snapshotPrefix, t.UTC().Format("2006/01/02")) + "/"
}

func snapshotKey(t time.Time) string {
	return path.Join(snapshotPrefix, t.UTC().Format("2006/01/02/150405.000")+".json")
}
