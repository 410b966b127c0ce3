package repository

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/transcoding"
)

type awsRepository struct {
	client *s3.Client
	cfg    *config.Config
}

func NewAwsRepository(client *s3.Client, cfg *config.Config) transcoding.StorageRepository {
	return &awsRepository{
		client: client,
		cfg:    cfg,
	}
}

func (a *awsRepository) FetchToFile(ctx context.Context, bucket, key, destDir string) (string, error) {
	res, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		if isObjectUnavailable(err) {
			return "", errors.Wrapf(transcoding.ErrSourceUnavailable, "s3://%s/%s", bucket, key)
		}
		return "", fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}
	defer res.Body.Close()

	localPath := filepath.Join(destDir, filepath.Base(key))
	outFile, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}
	defer outFile.Close()

	if _, err = io.Copy(outFile, res.Body); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write local file: %w", err)
	}
	return localPath, nil
}

func (a *awsRepository) UploadDir(ctx context.Context, localDir, bucket, prefix string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(localDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		key := prefix + "/" + filepath.ToSlash(rel)
		if err = a.putFile(ctx, path, bucket, key); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("failed to upload output dir: %w", err)
	}
	return uploaded, nil
}

func (a *awsRepository) putFile(ctx context.Context, path, bucket, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := contentTypeForFile(path)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        file,
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (a *awsRepository) RemoveObject(ctx context.Context, bucket, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to remove s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

func (a *awsRepository) PublicURL(bucket, key string) string {
	if base := a.cfg.S3.PublicBaseURL; base != "" {
		return strings.TrimSuffix(base, "/") + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(a.cfg.S3.Endpoint, "/"), bucket, key)
}

// isObjectUnavailable separates "the object is gone or forbidden" from
// transient transport failures.
func isObjectUnavailable(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound", "AccessDenied":
			return true
		}
	}
	return false
}

func contentTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".mp4", ".m4s":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
