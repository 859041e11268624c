package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossArchive struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSS(cfg config.Config) (Archive, error) {
	endpoint := strings.TrimSpace(cfg.ArchiveOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("archive: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.ArchiveOSSBucket)
	if bucketName == "" {
		return nil, errors.New("archive: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.ArchiveOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.ArchiveOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("archive: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("archive: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("archive: open OSS bucket: %w", err)
	}

	return &ossArchive{bucket: bucket, prefix: trimPrefix(cfg.ArchiveOSSPrefix)}, nil
}

func (s *ossArchive) Name() string {
	return TypeOSS
}

func (s *ossArchive) Put(ctx context.Context, data []byte, opts PutOptions) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty payload")
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	key := ObjectKey(opts)
	if s.prefix != "" {
		key = joinPrefix(s.prefix, key)
	}

	if opts.SkipIfExists {
		exists, err := s.bucket.IsObjectExist(key)
		if err != nil {
			return "", fmt.Errorf("check object: %w", err)
		}
		if exists {
			return key, nil
		}
	}

	err := s.bucket.PutObject(key, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(detectContentType(opts.Extension)),
	)
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

var _ Archive = (*ossArchive)(nil)
