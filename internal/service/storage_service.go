package service

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 课程图片等对象的访问接口（上传不在本服务范围内）
type StorageProvider interface {
	GetURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// LocalStorageProvider 本地存储实现，文件由 /uploads 静态路由提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func NewLocalStorageProvider(cfg *config.StorageConfig) (*LocalStorageProvider, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		return nil, err
	}
	return &LocalStorageProvider{Config: cfg}, nil
}

func (p *LocalStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	return "/uploads/" + path.Clean("/" + key)[1:], nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(path.Clean("/"+key)))
	err := os.Remove(dst)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MinioStorageProvider MinIO存储实现，返回预签名的 GET 地址
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
		// 指定 region 后预签名不再需要查询桶位置
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	expires := p.Config.PresignExpires
	if expires <= 0 {
		expires = time.Hour
	}
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, expires, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		return &StorageService{Provider: p}, nil
	default:
		p, err := NewLocalStorageProvider(cfg)
		if err != nil {
			return nil, err
		}
		return &StorageService{Provider: p}, nil
	}
}

// URL resolves an image key. An empty key means the course has no image.
func (s *StorageService) URL(ctx context.Context, key string) (string, error) {
	if s == nil || key == "" {
		return "", nil
	}
	return s.Provider.GetURL(ctx, key)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s == nil || key == "" {
		return nil
	}
	return s.Provider.Delete(ctx, key)
}
