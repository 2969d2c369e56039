// Package storage 本文件实现了七牛云Kodo后端的Blob存储
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	qiniustorage "github.com/qiniu/go-sdk/v7/storage"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
)

// QiniuStore 七牛云Kodo Blob存储实现
type QiniuStore struct {
	mac          *qbox.Mac                // 七牛云认证凭证
	bucketName   string                   // 存储桶名称
	bucketDomain string                   // 存储桶域名
	region       *qiniustorage.Region     // 存储区域信息
	backend      *database.StorageBackend // 后端配置信息
}

// NewQiniuStore 创建七牛云Kodo存储实例
// 根据后端配置初始化认证凭证、区域和域名设置
func NewQiniuStore(backend *database.StorageBackend) (*QiniuStore, error) {
	logger.Infof("[七牛云Kodo] 初始化存储实例: 存储桶=%s, 区域=%s", backend.Bucket, backend.Region)

	mac := qbox.NewMac(backend.AccessKey, backend.SecretKey)

	region, err := qiniustorage.GetRegion(backend.AccessKey, backend.Bucket)
	if err != nil {
		logger.Errorf("[七牛云Kodo] 获取区域失败: 存储桶=%s, 错误=%v", backend.Bucket, err)
		return nil, fmt.Errorf("failed to get qiniu region: %w", err)
	}

	// 构建域名
	bucketDomain := backend.Endpoint
	if bucketDomain == "" {
		bucketDomain = fmt.Sprintf("%s.%s", backend.Bucket, region.RsHost)
	}

	logger.Infof("[七牛云Kodo] 存储实例初始化成功: 存储桶=%s, 域名=%s", backend.Bucket, bucketDomain)
	return &QiniuStore{
		mac:          mac,
		bucketName:   backend.Bucket,
		bucketDomain: bucketDomain,
		region:       region,
		backend:      backend,
	}, nil
}

// bucketManager 创建存储桶管理器
func (s *QiniuStore) bucketManager() *qiniustorage.BucketManager {
	return qiniustorage.NewBucketManager(s.mac, &qiniustorage.Config{
		Region: s.region,
	})
}

// Put 上传Blob到七牛云Kodo
func (s *QiniuStore) Put(key string, reader io.Reader) (string, error) {
	logger.Infof("[七牛云Kodo] 开始上传Blob: 键=%s, 存储桶=%s", key, s.bucketName)

	putPolicy := qiniustorage.PutPolicy{
		Scope: fmt.Sprintf("%s:%s", s.bucketName, key),
	}
	upToken := putPolicy.UploadToken(s.mac)

	cfg := qiniustorage.Config{
		Region:        s.region,
		UseHTTPS:      true,
		UseCdnDomains: false,
	}

	formUploader := qiniustorage.NewFormUploader(&cfg)
	ret := qiniustorage.PutRet{}
	putExtra := qiniustorage.PutExtra{}

	// 大小未知的流式上传，size传-1
	if err := formUploader.Put(context.Background(), &ret, upToken, key, reader, -1, &putExtra); err != nil {
		logger.Errorf("[七牛云Kodo] 上传Blob失败: 键=%s, 错误=%v", key, err)
		return "", fmt.Errorf("failed to upload blob to qiniu kodo: %w", err)
	}

	path := fmt.Sprintf("kodo://%s/%s", s.bucketName, key)
	logger.Infof("[七牛云Kodo] 成功上传Blob: %s, 哈希值=%s", path, ret.Hash)
	return path, nil
}

// Get 从七牛云Kodo下载Blob
// 通过私有下载链接获取内容流
func (s *QiniuStore) Get(key string) (io.ReadCloser, error) {
	deadline := time.Now().Add(time.Hour).Unix()
	privateURL := qiniustorage.MakePrivateURL(s.mac, s.bucketDomain, key, deadline)

	resp, err := http.Get(privateURL)
	if err != nil {
		logger.Errorf("[七牛云Kodo] 下载Blob失败: 键=%s, 错误=%v", key, err)
		return nil, fmt.Errorf("failed to download blob from qiniu kodo: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		logger.Errorf("[七牛云Kodo] 下载Blob失败: 键=%s, 状态=%s", key, resp.Status)
		return nil, fmt.Errorf("failed to download blob, status: %s", resp.Status)
	}

	return resp.Body, nil
}

// Delete 删除七牛云Kodo中的Blob
// 对象不存在返回(false, nil)
func (s *QiniuStore) Delete(key string) (bool, error) {
	exists, err := s.Exists(key)
	if err != nil {
		return false, err
	}
	if !exists {
		logger.Infof("[七牛云Kodo] Blob不存在, 跳过删除, 键: %s", key)
		return false, nil
	}

	if err := s.bucketManager().Delete(s.bucketName, key); err != nil {
		logger.Errorf("[七牛云Kodo] 删除Blob失败: 键=%s, 错误=%v", key, err)
		return false, fmt.Errorf("failed to delete blob from qiniu kodo: %w", err)
	}

	logger.Infof("[七牛云Kodo] 成功删除Blob: %s", key)
	return true, nil
}

// Exists 检查Blob是否存在
func (s *QiniuStore) Exists(key string) (bool, error) {
	_, err := s.bucketManager().Stat(s.bucketName, key)
	if err != nil {
		if strings.Contains(err.Error(), "no such file or directory") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check blob existence in qiniu kodo: %w", err)
	}
	return true, nil
}

// TestConnection 测试七牛云Kodo连通性
func (s *QiniuStore) TestConnection() error {
	if _, err := s.bucketManager().Buckets(false); err != nil {
		return fmt.Errorf("failed to test qiniu kodo connection: %w", err)
	}
	return nil
}
