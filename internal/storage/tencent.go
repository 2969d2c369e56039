// Package storage 本文件实现了腾讯云COS后端的Blob存储
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
)

// TencentStore 腾讯云COS Blob存储实现
type TencentStore struct {
	client  *cos.Client              // COS客户端实例
	backend *database.StorageBackend // 后端配置信息
}

// NewTencentStore 创建腾讯云COS存储实例
func NewTencentStore(backend *database.StorageBackend) (*TencentStore, error) {
	// 构建URL
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", backend.Bucket, backend.Region)
	if backend.Endpoint != "" {
		bucketURL = backend.Endpoint
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  backend.AccessKey,
			SecretKey: backend.SecretKey,
		},
	})

	logger.Infof("[腾讯云COS] 存储实例初始化成功, 配置名称: %s, 存储桶URL: %s", backend.Name, bucketURL)
	return &TencentStore{
		client:  client,
		backend: backend,
	}, nil
}

// Put 上传Blob到腾讯云COS
func (s *TencentStore) Put(key string, reader io.Reader) (string, error) {
	_, err := s.client.Object.Put(context.Background(), key, reader, nil)
	if err != nil {
		logger.Errorf("[腾讯云COS] 上传Blob失败, 键: %s, 错误: %v", key, err)
		return "", fmt.Errorf("failed to upload blob to tencent cos: %w", err)
	}

	path := fmt.Sprintf("cos://%s/%s", s.backend.Bucket, key)
	logger.Infof("[腾讯云COS] 成功上传Blob: %s", path)
	return path, nil
}

// Get 从腾讯云COS下载Blob
func (s *TencentStore) Get(key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(context.Background(), key, nil)
	if err != nil {
		logger.Errorf("[腾讯云COS] 下载Blob失败, 键: %s, 错误: %v", key, err)
		return nil, fmt.Errorf("failed to download blob from tencent cos: %w", err)
	}
	return resp.Body, nil
}

// Delete 删除腾讯云COS中的Blob
// 对象不存在返回(false, nil)
func (s *TencentStore) Delete(key string) (bool, error) {
	exists, err := s.Exists(key)
	if err != nil {
		return false, err
	}
	if !exists {
		logger.Infof("[腾讯云COS] Blob不存在, 跳过删除, 键: %s", key)
		return false, nil
	}

	if _, err := s.client.Object.Delete(context.Background(), key); err != nil {
		logger.Errorf("[腾讯云COS] 删除Blob失败, 键: %s, 错误: %v", key, err)
		return false, fmt.Errorf("failed to delete blob from tencent cos: %w", err)
	}

	logger.Infof("[腾讯云COS] 成功删除Blob: %s", key)
	return true, nil
}

// Exists 检查Blob是否存在
func (s *TencentStore) Exists(key string) (bool, error) {
	_, err := s.client.Object.Head(context.Background(), key, nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blob existence in tencent cos: %w", err)
	}
	return true, nil
}

// TestConnection 测试腾讯云COS连通性
func (s *TencentStore) TestConnection() error {
	_, err := s.client.Bucket.Head(context.Background())
	if err != nil {
		return fmt.Errorf("failed to test tencent cos connection: %w", err)
	}
	return nil
}
