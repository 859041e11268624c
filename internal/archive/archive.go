// Package archive persists exported data files to local disk or object storage.
package archive

import (
	"context"
	"fmt"
	"meteoapi/internal/config"
	"strings"
)

const (
	// TypeLocal 本地文件系统
	TypeLocal = "local"
	// TypeS3 Amazon S3 或兼容存储
	TypeS3 = "s3"
	// TypeOSS 阿里云 OSS
	TypeOSS = "oss"
	// TypeCOS 腾讯云 COS
	TypeCOS = "cos"
	// TypeR2 Cloudflare R2
	TypeR2 = "r2"
)

// PutOptions 描述一次写入。
//
// Category 和 Name 组成对象键，Extension 决定文件后缀和 Content-Type。
// SkipIfExists 为 true 时若对象已存在则直接返回已有键。
type PutOptions struct {
	Category     string
	Name         string
	Extension    string
	SkipIfExists bool
}

// Archive 保存导出文件并返回对象键
type Archive interface {
	Put(ctx context.Context, data []byte, opts PutOptions) (string, error)
	Name() string
}

// LocalBaseDirProvider 由可以直接通过 HTTP 提供文件的本地后端实现
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// New 根据 ARCHIVE_TYPE 创建后端
func New(cfg config.Config) (Archive, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ArchiveType)) {
	case "", TypeLocal:
		return NewLocal(cfg.ArchiveLocalDir)
	case TypeS3:
		return NewS3(cfg)
	case TypeOSS:
		return NewOSS(cfg)
	case TypeCOS:
		return NewCOS(cfg)
	case TypeR2:
		return NewR2(cfg)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", cfg.ArchiveType)
	}
}

// PublicURL joins the configured public base with an object key. An empty
// base yields an empty URL.
func PublicURL(base, key string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" || key == "" {
		return ""
	}
	return base + "/" + strings.TrimLeft(key, "/")
}
