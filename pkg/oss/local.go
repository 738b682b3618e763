package oss

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LocalUploader 本地磁盘存储，目录由 HTTP 服务以 /uploads 静态暴露
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader 创建本地上传器
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir 存储根目录
func (u *LocalUploader) Dir() string {
	return u.dir
}

// Upload 写入文件
func (u *LocalUploader) Upload(_ context.Context, objectKey string, reader io.Reader, _ string) (string, error) {
	target, err := u.path(objectKey)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return u.GetURL(objectKey), nil
}

// Delete 删除文件，不存在时忽略
func (u *LocalUploader) Delete(_ context.Context, objectKey string) error {
	target, err := u.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetURL 获取文件 URL
func (u *LocalUploader) GetURL(objectKey string) string {
	return u.baseURL + "/" + objectKey
}

// path 对象键不得跳出存储根目录
func (u *LocalUploader) path(objectKey string) (string, error) {
	clean := filepath.Clean("/" + objectKey)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", objectKey)
	}
	return filepath.Join(u.dir, clean), nil
}

// MemoryUploader 内存上传器（用于测试）
type MemoryUploader struct {
	mu    sync.Mutex
	Files map[string][]byte
}

// NewMemoryUploader 创建内存上传器
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{Files: make(map[string][]byte)}
}

// Upload 保存到内存
func (u *MemoryUploader) Upload(_ context.Context, objectKey string, reader io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.Files[objectKey] = data
	u.mu.Unlock()
	return u.GetURL(objectKey), nil
}

// Delete 从内存删除
func (u *MemoryUploader) Delete(_ context.Context, objectKey string) error {
	u.mu.Lock()
	delete(u.Files, objectKey)
	u.mu.Unlock()
	return nil
}

// GetURL 获取模拟 URL
func (u *MemoryUploader) GetURL(objectKey string) string {
	return "https://oss.example.com/" + objectKey
}
