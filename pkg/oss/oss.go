// Package oss 对象存储服务
package oss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dumeirei/foodstay-backend/internal/common/config"
)

// Uploader 上传器接口
type Uploader interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
}

// 图片校验错误
var (
	ErrUnsupportedImageExt = errors.New("unsupported image extension")
	ErrNotAnImage          = errors.New("file content is not an image")
)

// 允许上传的图片扩展名
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// New 按配置创建上传器
func New(cfg *config.OSSConfig) (Uploader, error) {
	switch cfg.Provider {
	case "aliyun":
		return NewAliyunUploader(&AliyunConfig{
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			AccessKeySecret: cfg.AccessKeySecret,
			BucketName:      cfg.Bucket,
			Domain:          cfg.CustomDomain,
			BasePath:        cfg.UploadDir,
		})
	case "", "local":
		return NewLocalUploader(cfg.LocalDir, cfg.BaseURL)
	case "memory":
		return NewMemoryUploader(), nil
	default:
		return nil, fmt.Errorf("unknown oss provider %q", cfg.Provider)
	}
}

// GenerateObjectKey 生成对象键: <kind>/<yyyymmdd>/<uuid><ext>
func GenerateObjectKey(kind, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", kind, now.Format("20060102"), uuid.NewString(), ext)
}

// ImageContentType 返回图片扩展名对应的 Content-Type，非图片返回 false
func ImageContentType(filename string) (string, bool) {
	ct, ok := imageExts[strings.ToLower(path.Ext(filename))]
	return ct, ok
}

// ValidateImage 校验扩展名并嗅探文件头
func ValidateImage(filename string, head []byte) error {
	if _, ok := ImageContentType(filename); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedImageExt, path.Ext(filename))
	}
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return ErrNotAnImage
	}
	return nil
}
