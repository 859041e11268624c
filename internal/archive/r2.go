package archive

import (
	"errors"
	"fmt"
	"meteoapi/internal/config"
	"strings"
)

// NewR2 builds an S3 client against a Cloudflare R2 account endpoint.
func NewR2(cfg config.Config) (Archive, error) {
	bucket := strings.TrimSpace(cfg.ArchiveR2Bucket)
	if bucket == "" {
		return nil, errors.New("archive: missing R2 bucket")
	}

	endpoint := strings.TrimSpace(cfg.ArchiveR2Endpoint)
	if endpoint == "" {
		accountID := strings.TrimSpace(cfg.ArchiveR2AccountID)
		if accountID == "" {
			return nil, errors.New("archive: missing R2 endpoint or account id")
		}
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	region := strings.TrimSpace(cfg.ArchiveR2Region)
	if region == "" {
		region = "auto"
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     cfg.ArchiveR2AccessKeyID,
		SecretAccessKey: cfg.ArchiveR2SecretAccessKey,
		ForcePathStyle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: create R2 client: %w", err)
	}

	return &s3Archive{
		name:   TypeR2,
		client: client,
		bucket: bucket,
		prefix: trimPrefix(cfg.ArchiveR2Prefix),
	}, nil
}
