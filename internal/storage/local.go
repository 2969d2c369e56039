// Package storage 本文件实现了本地磁盘Blob存储
// 作为默认后端使用，所有Blob平铺存放在配置的根目录下
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiwangfds/filecatalog/internal/logger"
)

// LocalStore 本地磁盘Blob存储实现
type LocalStore struct {
	basePath string // Blob存储根目录
}

// NewLocalStore 创建本地磁盘存储实例
// 根目录不存在时自动创建
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("local storage base path is empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		logger.Errorf("[本地存储] 创建存储目录失败: %s, 错误: %v", basePath, err)
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	logger.Infof("[本地存储] 初始化完成, 存储目录: %s", basePath)
	return &LocalStore{basePath: basePath}, nil
}

// blobPath 根据存储键计算磁盘路径
// 拒绝包含路径分隔符或上级引用的键，避免越出存储根目录
func (s *LocalStore) blobPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.basePath, key), nil
}

// Put 以指定存储键写入Blob
// 先写临时文件再重命名，避免读到写了一半的内容
func (s *LocalStore) Put(key string, reader io.Reader) (string, error) {
	path, err := s.blobPath(key)
	if err != nil {
		return "", err
	}

	tempFile, err := os.CreateTemp(s.basePath, "put_*")
	if err != nil {
		logger.Errorf("[本地存储] 创建临时文件失败, 键: %s, 错误: %v", key, err)
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		logger.Errorf("[本地存储] 写入Blob数据失败, 键: %s, 错误: %v", key, err)
		return "", fmt.Errorf("failed to write blob data: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		logger.Errorf("[本地存储] 移动Blob到最终位置失败, 键: %s, 错误: %v", key, err)
		return "", fmt.Errorf("failed to move blob into place: %w", err)
	}

	logger.Infof("[本地存储] Blob写入成功, 键: %s, 路径: %s", key, path)
	return path, nil
}

// Get 按存储键打开Blob内容流
func (s *LocalStore) Get(key string) (io.ReadCloser, error) {
	path, err := s.blobPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Errorf("[本地存储] 打开Blob失败, 键: %s, 错误: %v", key, err)
		return nil, fmt.Errorf("failed to open blob %s: %w", key, err)
	}
	return file, nil
}

// Delete 按存储键删除Blob
// 对象不存在返回(false, nil)
func (s *LocalStore) Delete(key string) (bool, error) {
	path, err := s.blobPath(key)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			logger.Infof("[本地存储] Blob不存在, 跳过删除, 键: %s", key)
			return false, nil
		}
		logger.Errorf("[本地存储] 删除Blob失败, 键: %s, 错误: %v", key, err)
		return false, fmt.Errorf("failed to delete blob %s: %w", key, err)
	}

	logger.Infof("[本地存储] Blob删除成功, 键: %s", key)
	return true, nil
}

// Exists 检查存储键对应的Blob是否存在
func (s *LocalStore) Exists(key string) (bool, error) {
	path, err := s.blobPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat blob %s: %w", key, err)
	}
	return true, nil
}

// TestConnection 测试后端连通性
// 对本地磁盘而言即检查存储目录可写
func (s *LocalStore) TestConnection() error {
	probe, err := os.CreateTemp(s.basePath, "probe_*")
	if err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", s.basePath, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
