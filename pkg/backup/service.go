package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const keyPrefix = "backups/"

// Source is a partition that can be snapshotted under its lock
type Source interface {
	Partition() string
	Path() string
	Snapshot(ctx context.Context) ([]byte, error)
}

// S3API is the subset of the S3 client used for backups
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Service snapshots the partition files to S3
type Service struct {
	s3Client      S3API
	bucket        string
	retentionDays int
	sources       []Source
	now           func() time.Time
}

// Config holds backup configuration
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
	RetentionDays      int // Number of days to keep backups
}

// NewService creates a backup service with an S3 client built from cfg
func NewService(cfg Config, sources ...Source) (*Service, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewServiceWithClient(s3.NewFromConfig(awsCfg), cfg, sources...), nil
}

// NewServiceWithClient creates a backup service around an existing client
func NewServiceWithClient(client S3API, cfg Config, sources ...Source) *Service {
	return &Service{
		s3Client:      client,
		bucket:        cfg.S3Bucket,
		retentionDays: cfg.RetentionDays,
		sources:       sources,
		now:           time.Now,
	}
}

// BackupResult contains information about a completed backup
type BackupResult struct {
	Key        string
	Size       int64
	Partitions []string
	Duration   time.Duration
}

// CreateBackup archives every partition file into one tar.gz and uploads
// it. Each partition is read under its own lock, so the archive holds a
// consistent copy of each file.
func (s *Service) CreateBackup(ctx context.Context) (*BackupResult, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}
	start := s.now()

	archive, partitions, err := s.archive(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%sironoak-backup-%s.tar.gz", keyPrefix, start.UTC().Format("20060102-150405"))
	log.Printf("🔄 Uploading backup: %s", key)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(archive),
		ContentType:  aws.String("application/gzip"),
		StorageClass: types.StorageClassStandardIa,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	result := &BackupResult{
		Key:        key,
		Size:       int64(len(archive)),
		Partitions: partitions,
		Duration:   s.now().Sub(start),
	}
	log.Printf("✅ Backup uploaded to S3: s3://%s/%s (size: %d bytes)", s.bucket, key, result.Size)

	if err := s.cleanupOldBackups(ctx); err != nil {
		log.Printf("⚠️  Failed to cleanup old backups: %v", err)
	}
	return result, nil
}

func (s *Service) archive(ctx context.Context) ([]byte, []string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	partitions := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		data, err := src.Snapshot(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to snapshot %s: %w", src.Partition(), err)
		}
		hdr := &tar.Header{
			Name:    filepath.Base(src.Path()),
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: s.now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, nil, fmt.Errorf("failed to write archive header: %w", err)
		}
		if _, err := tw.Write(data); err != nil {
			return nil, nil, fmt.Errorf("failed to write archive entry: %w", err)
		}
		partitions = append(partitions, src.Partition())
	}

	if err := tw.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to close archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), partitions, nil
}

// cleanupOldBackups deletes backups older than the retention period
func (s *Service) cleanupOldBackups(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}

	var deleted int
	for _, b := range backups {
		if !b.LastModified.Before(cutoff) {
			continue
		}
		if _, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(b.Key),
		}); err != nil {
			log.Printf("⚠️  Failed to delete old backup %s: %v", b.Key, err)
			continue
		}
		deleted++
		log.Printf("🗑️  Deleted old backup: %s", b.Key)
	}

	if deleted > 0 {
		log.Printf("✅ Cleaned up %d old backups (retention: %d days)", deleted, s.retentionDays)
	}
	return nil
}

// BackupInfo contains information about a stored backup
type BackupInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListBackups lists all backups in S3
func (s *Service) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}

	var (
		backups []BackupInfo
		token   *string
	)
	for {
		out, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(keyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list S3 objects: %w", err)
		}
		for _, obj := range out.Contents {
			info := BackupInfo{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			backups = append(backups, info)
		}
		if !aws.ToBool(out.IsTruncated) {
			return backups, nil
		}
		token = out.NextContinuationToken
	}
}
