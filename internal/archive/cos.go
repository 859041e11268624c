package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/config"
	"net/http"
	"net/url"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosArchive struct {
	client *cos.Client
	prefix string
}

func NewCOS(cfg config.Config) (Archive, error) {
	baseURL := strings.TrimSpace(cfg.ArchiveCOSBucketURL)
	if baseURL == "" {
		return nil, errors.New("archive: missing COS bucket URL")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("archive: parse COS bucket URL: %w", err)
	}

	secretID := strings.TrimSpace(cfg.ArchiveCOSSecretID)
	secretKey := strings.TrimSpace(cfg.ArchiveCOSSecretKey)
	if secretID == "" || secretKey == "" {
		return nil, errors.New("archive: missing COS credentials")
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: parsedURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{SecretID: secretID, SecretKey: secretKey},
	})

	return &cosArchive{client: client, prefix: trimPrefix(cfg.ArchiveCOSPrefix)}, nil
}

func (s *cosArchive) Name() string {
	return TypeCOS
}

func (s *cosArchive) Put(ctx context.Context, data []byte, opts PutOptions) (string, error) {
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
		resp, err := s.client.Object.Head(ctx, key, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err == nil {
			return key, nil
		}
		if !cos.IsNotFoundError(err) {
			return "", fmt.Errorf("head object: %w", err)
		}
	}

	options := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: detectContentType(opts.Extension),
		},
	}
	resp, err := s.client.Object.Put(ctx, key, bytes.NewReader(data), options)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

var _ Archive = (*cosArchive)(nil)
