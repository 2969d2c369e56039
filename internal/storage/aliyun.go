// Package storage 本文件实现了阿里云OSS后端的Blob存储
package storage

import (
	"fmt"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
)

// AliyunStore 阿里云OSS Blob存储实现
type AliyunStore struct {
	client  *oss.Client              // 阿里云OSS客户端实例
	bucket  *oss.Bucket              // OSS存储桶实例
	backend *database.StorageBackend // 后端配置信息
}

// NewAliyunStore 创建阿里云OSS存储实例
// 根据后端配置初始化客户端和存储桶连接
// 参数:
//   - backend: 后端配置信息，包含访问密钥、区域、存储桶等
//
// 返回:
//   - *AliyunStore: 初始化完成的阿里云OSS存储实例
//   - error: 初始化过程中的错误信息
func NewAliyunStore(backend *database.StorageBackend) (*AliyunStore, error) {
	logger.Infof("[阿里云OSS] 初始化存储实例, 配置名称: %s, 区域: %s, 存储桶: %s",
		backend.Name, backend.Region, backend.Bucket)

	// 构建endpoint
	endpoint := backend.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", backend.Region)
		logger.Infof("[阿里云OSS] 使用默认区域域名: %s", endpoint)
	}

	client, err := oss.New(endpoint, backend.AccessKey, backend.SecretKey)
	if err != nil {
		logger.Errorf("[阿里云OSS] 创建客户端失败, 错误: %v", err)
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}

	bucket, err := client.Bucket(backend.Bucket)
	if err != nil {
		logger.Errorf("[阿里云OSS] 连接存储桶失败, 存储桶: %s, 错误: %v", backend.Bucket, err)
		return nil, fmt.Errorf("failed to get bucket %s: %w", backend.Bucket, err)
	}

	logger.Infof("[阿里云OSS] 存储实例初始化成功, 配置名称: %s", backend.Name)
	return &AliyunStore{
		client:  client,
		bucket:  bucket,
		backend: backend,
	}, nil
}

// Put 上传Blob到阿里云OSS
func (s *AliyunStore) Put(key string, reader io.Reader) (string, error) {
	logger.Infof("[阿里云OSS] 开始上传Blob: %s, 存储桶: %s", key, s.backend.Bucket)

	if err := s.bucket.PutObject(key, reader); err != nil {
		logger.Errorf("[阿里云OSS] 上传Blob失败, 键: %s, 错误: %v", key, err)
		return "", fmt.Errorf("failed to upload blob to aliyun oss: %w", err)
	}

	path := fmt.Sprintf("oss://%s/%s", s.backend.Bucket, key)
	logger.Infof("[阿里云OSS] 成功上传Blob: %s", path)
	return path, nil
}

// Get 从阿里云OSS下载Blob
func (s *AliyunStore) Get(key string) (io.ReadCloser, error) {
	body, err := s.bucket.GetObject(key)
	if err != nil {
		logger.Errorf("[阿里云OSS] 下载Blob失败, 键: %s, 错误: %v", key, err)
		return nil, fmt.Errorf("failed to download blob from aliyun oss: %w", err)
	}
	return body, nil
}

// Delete 删除阿里云OSS中的Blob
// 对象不存在返回(false, nil)
func (s *AliyunStore) Delete(key string) (bool, error) {
	exists, err := s.bucket.IsObjectExist(key)
	if err != nil {
		logger.Errorf("[阿里云OSS] 检查Blob存在性失败, 键: %s, 错误: %v", key, err)
		return false, fmt.Errorf("failed to check blob existence in aliyun oss: %w", err)
	}
	if !exists {
		logger.Infof("[阿里云OSS] Blob不存在, 跳过删除, 键: %s", key)
		return false, nil
	}

	if err := s.bucket.DeleteObject(key); err != nil {
		logger.Errorf("[阿里云OSS] 删除Blob失败, 键: %s, 错误: %v", key, err)
		return false, fmt.Errorf("failed to delete blob from aliyun oss: %w", err)
	}

	logger.Infof("[阿里云OSS] 成功删除Blob: %s", key)
	return true, nil
}

// Exists 检查Blob是否存在
func (s *AliyunStore) Exists(key string) (bool, error) {
	exists, err := s.bucket.IsObjectExist(key)
	if err != nil {
		return false, fmt.Errorf("failed to check blob existence in aliyun oss: %w", err)
	}
	return exists, nil
}

// TestConnection 测试阿里云OSS连通性
func (s *AliyunStore) TestConnection() error {
	_, err := s.client.GetBucketInfo(s.backend.Bucket)
	if err != nil {
		return fmt.Errorf("failed to test aliyun oss connection: %w", err)
	}
	return nil
}
