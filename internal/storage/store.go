// Package storage 提供Blob存储抽象
// 以存储键为地址管理不透明的二进制对象，支持本地磁盘和
// 阿里云OSS、腾讯云COS、七牛云Kodo等多种后端
package storage

import (
	"errors"
	"io"

	"github.com/weiwangfds/filecatalog/internal/database"
)

// ErrUnsupportedProvider 不支持的存储提供商错误
var ErrUnsupportedProvider = errors.New("unsupported storage provider")

// 支持的存储提供商
const (
	ProviderLocal   = "local"
	ProviderAliyun  = "aliyun"
	ProviderTencent = "tencent"
	ProviderQiniu   = "qiniu"
)

// BlobStore Blob存储接口
// 所有实现都把存储键当作不透明字符串处理，不保证目录语义
type BlobStore interface {
	// Put 以指定存储键写入Blob，返回后端内部的存储路径
	// 数据流直接透传到后端，不在内存中缓冲完整内容
	Put(key string, reader io.Reader) (string, error)

	// Get 按存储键打开Blob内容流，调用者负责关闭
	Get(key string) (io.ReadCloser, error)

	// Delete 按存储键删除Blob
	// 返回是否真正删除了对象；对象不存在返回(false, nil)，从不视为错误
	Delete(key string) (bool, error)

	// Exists 检查存储键对应的Blob是否存在
	Exists(key string) (bool, error)

	// TestConnection 测试后端连通性
	TestConnection() error
}

// Factory Blob存储工厂
// 根据后端配置创建对应提供商的存储实例
type Factory struct{}

// CreateStore 根据后端配置创建Blob存储实例
func (f *Factory) CreateStore(backend *database.StorageBackend) (BlobStore, error) {
	switch backend.Provider {
	case ProviderLocal:
		return NewLocalStore(backend.BasePath)
	case ProviderAliyun:
		return NewAliyunStore(backend)
	case ProviderTencent:
		return NewTencentStore(backend)
	case ProviderQiniu:
		return NewQiniuStore(backend)
	default:
		return nil, ErrUnsupportedProvider
	}
}
