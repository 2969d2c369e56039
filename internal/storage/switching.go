// Package storage 本文件实现了可切换后端的Blob存储
package storage

import (
	"io"
	"sync"
	"time"

	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
)

// BackendSource 当前激活后端的来源
type BackendSource interface {
	// ActiveBackend 返回当前激活的存储后端配置
	// 没有激活后端时返回(nil, nil)
	ActiveBackend() (*database.StorageBackend, error)
}

// SwitchingStore 可切换后端的Blob存储
// 每次操作时解析当前激活的后端，按后端ID缓存已创建的存储实例；
// 没有激活后端或后端创建失败时回退到本地存储
type SwitchingStore struct {
	source   BackendSource
	factory  *Factory
	fallback BlobStore

	mu       sync.Mutex
	cached   BlobStore // 最近一次激活后端对应的存储实例
	lastID   uint      // 缓存实例对应的后端ID
	lastSeen time.Time // 缓存实例对应配置的更新时间，配置变更后重建实例
}

// NewSwitchingStore 创建可切换后端的Blob存储实例
func NewSwitchingStore(source BackendSource, factory *Factory, fallback BlobStore) *SwitchingStore {
	return &SwitchingStore{
		source:   source,
		factory:  factory,
		fallback: fallback,
	}
}

// resolve 解析当前应该使用的Blob存储实例
func (s *SwitchingStore) resolve() BlobStore {
	backend, err := s.source.ActiveBackend()
	if err != nil {
		logger.Errorf("[存储切换] 查询激活后端失败, 回退到本地存储, 错误: %v", err)
		return s.fallback
	}
	if backend == nil {
		return s.fallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.lastID == backend.ID && s.lastSeen.Equal(backend.UpdatedAt) {
		return s.cached
	}

	store, err := s.factory.CreateStore(backend)
	if err != nil {
		logger.Errorf("[存储切换] 创建后端存储实例失败, 后端: %s(%s), 回退到本地存储, 错误: %v",
			backend.Name, backend.Provider, err)
		return s.fallback
	}

	logger.Infof("[存储切换] 切换到后端: %s(%s)", backend.Name, backend.Provider)
	s.cached = store
	s.lastID = backend.ID
	s.lastSeen = backend.UpdatedAt
	return store
}

// Put 以指定存储键写入Blob
func (s *SwitchingStore) Put(key string, reader io.Reader) (string, error) {
	return s.resolve().Put(key, reader)
}

// Get 按存储键打开Blob内容流
func (s *SwitchingStore) Get(key string) (io.ReadCloser, error) {
	return s.resolve().Get(key)
}

// Delete 按存储键删除Blob
func (s *SwitchingStore) Delete(key string) (bool, error) {
	return s.resolve().Delete(key)
}

// Exists 检查存储键对应的Blob是否存在
func (s *SwitchingStore) Exists(key string) (bool, error) {
	return s.resolve().Exists(key)
}

// TestConnection 测试当前激活后端的连通性
func (s *SwitchingStore) TestConnection() error {
	return s.resolve().TestConnection()
}
