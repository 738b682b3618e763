// Package upload 提供图片上传服务
package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/foodstay-backend/internal/common/errors"
	"github.com/dumeirei/foodstay-backend/internal/common/logger"
	"github.com/dumeirei/foodstay-backend/pkg/oss"
)

// 图片用途
const (
	KindFood = "food"
	KindRoom = "room"
)

// DefaultMaxImageSize 默认图片大小上限（10MB）
const DefaultMaxImageSize = 10 << 20

// 嗅探文件类型读取的字节数
const sniffLen = 512

// UploadService 上传服务
type UploadService struct {
	uploader oss.Uploader
	maxSize  int64
}

// NewUploadService 创建上传服务，maxSize <= 0 时使用默认上限
func NewUploadService(uploader oss.Uploader, maxSize int64) *UploadService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &UploadService{uploader: uploader, maxSize: maxSize}
}

// UploadImageRequest 上传图片请求
type UploadImageRequest struct {
	File *multipart.FileHeader
	Kind string // food / room
}

// UploadImageResponse 上传图片响应
type UploadImageResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// UploadImage 校验并上传菜品或房间图片
func (s *UploadService) UploadImage(ctx context.Context, req *UploadImageRequest) (*UploadImageResponse, error) {
	if req.File == nil {
		return nil, errors.ErrUploadFileMissing
	}
	kind := req.Kind
	if kind == "" {
		kind = KindFood
	}
	if kind != KindFood && kind != KindRoom {
		return nil, errors.ErrInvalidParams.WithMessage("Upload type must be food or room")
	}
	if req.File.Size > s.maxSize {
		return nil, errors.ErrUploadFileTooBig.WithMessagef("File is too large, maximum size is %dMB", s.maxSize>>20)
	}

	f, err := req.File.Open()
	if err != nil {
		return nil, errors.ErrUploadFailed.WithError(err)
	}
	defer f.Close()

	// 多读一个字节用于判断是否超限
	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return nil, errors.ErrUploadFailed.WithError(err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, errors.ErrUploadFileTooBig.WithMessagef("File is too large, maximum size is %dMB", s.maxSize>>20)
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if err := oss.ValidateImage(req.File.Filename, head); err != nil {
		return nil, errors.ErrUploadFileType.WithMessage("Only jpg, jpeg, png, gif and webp images are allowed").WithError(err)
	}

	contentType, _ := oss.ImageContentType(req.File.Filename)
	objectKey := oss.GenerateObjectKey(kind, req.File.Filename, time.Now().UTC())
	url, err := s.uploader.Upload(ctx, objectKey, bytes.NewReader(data), contentType)
	if err != nil {
		logger.Error("image upload failed", zap.String("object_key", objectKey), zap.Error(err))
		return nil, errors.ErrUploadFailed.WithError(err)
	}

	logger.Info("image uploaded", zap.String("object_key", objectKey), zap.Int("size", len(data)))
	return &UploadImageResponse{
		URL:      url,
		FileName: req.File.Filename,
		Size:     int64(len(data)),
	}, nil
}
