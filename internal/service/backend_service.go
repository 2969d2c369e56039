// Package service 实现文件目录的核心业务逻辑
// 本文件实现存储后端管理服务：后端配置的增删改查、连接测试和激活切换
package service

import (
	stderrors "errors"

	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/errors"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"gorm.io/gorm"
)

// BackendService 存储后端管理服务接口
// 管理云端Blob存储后端配置，同一时刻最多有一个激活配置；
// 没有激活配置时文件服务使用本地磁盘存储
type BackendService interface {
	// ListBackends 获取所有后端配置
	ListBackends() ([]database.StorageBackend, error)

	// GetBackend 根据ID获取后端配置
	GetBackend(id uint) (*database.StorageBackend, error)

	// CreateBackend 创建后端配置
	// 校验提供商合法性，新配置默认未激活
	CreateBackend(backend *database.StorageBackend) (*database.StorageBackend, error)

	// UpdateBackend 更新后端配置
	UpdateBackend(backend *database.StorageBackend) (*database.StorageBackend, error)

	// DeleteBackend 删除后端配置，激活中的配置不可删除
	DeleteBackend(id uint) error

	// ActivateBackend 激活指定后端
	// 在事务中先取消所有激活标记再激活目标配置，保证最多一个激活配置
	ActivateBackend(id uint) (*database.StorageBackend, error)

	// DeactivateBackend 取消指定后端的激活状态
	DeactivateBackend(id uint) error

	// TestBackend 测试指定后端的连通性
	TestBackend(id uint) error

	// ActiveBackend 返回当前激活的后端配置，没有激活配置时返回(nil, nil)
	ActiveBackend() (*database.StorageBackend, error)
}

// backendService 存储后端管理服务实现
type backendService struct {
	db      *gorm.DB
	factory *storage.Factory
}

// NewBackendService 创建存储后端管理服务实例
func NewBackendService(db *gorm.DB, factory *storage.Factory) BackendService {
	return &backendService{
		db:      db,
		factory: factory,
	}
}

// 合法的存储提供商集合
var validProviders = map[string]bool{
	storage.ProviderLocal:   true,
	storage.ProviderAliyun:  true,
	storage.ProviderTencent: true,
	storage.ProviderQiniu:   true,
}

// validateBackend 校验后端配置
func validateBackend(backend *database.StorageBackend) error {
	if backend == nil || backend.Name == "" {
		return errors.NewByCode(errors.ErrBackendInvalid).WithDetails("name is required")
	}
	if !validProviders[backend.Provider] {
		return errors.NewByCode(errors.ErrBackendInvalid).WithDetails("unsupported provider: " + backend.Provider)
	}
	if backend.Provider == storage.ProviderLocal {
		if backend.BasePath == "" {
			return errors.NewByCode(errors.ErrBackendInvalid).WithDetails("base_path is required for local provider")
		}
		return nil
	}
	if backend.Bucket == "" || backend.AccessKey == "" || backend.SecretKey == "" {
		return errors.NewByCode(errors.ErrBackendInvalid).WithDetails("bucket, access_key and secret_key are required")
	}
	return nil
}

// ListBackends 获取所有后端配置
func (s *backendService) ListBackends() ([]database.StorageBackend, error) {
	var backends []database.StorageBackend
	if err := s.db.Order("created_at DESC").Find(&backends).Error; err != nil {
		logger.Errorf("[存储后端] 查询后端配置列表失败, 错误: %v", err)
		return nil, errors.Wrap(errors.ErrCatalogQuery, err)
	}
	return backends, nil
}

// GetBackend 根据ID获取后端配置
func (s *backendService) GetBackend(id uint) (*database.StorageBackend, error) {
	var backend database.StorageBackend
	if err := s.db.First(&backend, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewByCode(errors.ErrBackendNotFound)
		}
		logger.Errorf("[存储后端] 查询后端配置失败, ID: %d, 错误: %v", id, err)
		return nil, errors.Wrap(errors.ErrCatalogQuery, err)
	}
	return &backend, nil
}

// CreateBackend 创建后端配置
func (s *backendService) CreateBackend(backend *database.StorageBackend) (*database.StorageBackend, error) {
	if err := validateBackend(backend); err != nil {
		return nil, err
	}

	backend.ID = 0
	backend.IsActive = false

	if err := s.db.Create(backend).Error; err != nil {
		logger.Errorf("[存储后端] 创建后端配置失败, 名称: %s, 错误: %v", backend.Name, err)
		return nil, errors.Wrap(errors.ErrCatalogInsert, err)
	}

	logger.Infof("[存储后端] 创建后端配置成功, ID: %d, 名称: %s, 提供商: %s",
		backend.ID, backend.Name, backend.Provider)
	return backend, nil
}

// UpdateBackend 更新后端配置
func (s *backendService) UpdateBackend(backend *database.StorageBackend) (*database.StorageBackend, error) {
	if backend == nil || backend.ID == 0 {
		return nil, errors.NewByCode(errors.ErrBackendInvalid).WithDetails("id is required")
	}
	if err := validateBackend(backend); err != nil {
		return nil, err
	}

	existing, err := s.GetBackend(backend.ID)
	if err != nil {
		return nil, err
	}

	// 激活状态只能通过激活/取消激活接口变更
	backend.IsActive = existing.IsActive
	backend.CreatedAt = existing.CreatedAt

	if err := s.db.Save(backend).Error; err != nil {
		logger.Errorf("[存储后端] 更新后端配置失败, ID: %d, 错误: %v", backend.ID, err)
		return nil, errors.Wrap(errors.ErrCatalogUpdate, err)
	}

	logger.Infof("[存储后端] 更新后端配置成功, ID: %d, 名称: %s", backend.ID, backend.Name)
	return backend, nil
}

// DeleteBackend 删除后端配置
func (s *backendService) DeleteBackend(id uint) error {
	backend, err := s.GetBackend(id)
	if err != nil {
		return err
	}
	if backend.IsActive {
		return errors.NewByCode(errors.ErrBackendInvalid).WithDetails("cannot delete the active backend")
	}

	if err := s.db.Delete(backend).Error; err != nil {
		logger.Errorf("[存储后端] 删除后端配置失败, ID: %d, 错误: %v", id, err)
		return errors.Wrap(errors.ErrCatalogDelete, err)
	}

	logger.Infof("[存储后端] 删除后端配置成功, ID: %d, 名称: %s", id, backend.Name)
	return nil
}

// ActivateBackend 激活指定后端
func (s *backendService) ActivateBackend(id uint) (*database.StorageBackend, error) {
	backend, err := s.GetBackend(id)
	if err != nil {
		return nil, err
	}
	if !backend.IsEnabled {
		return nil, errors.NewByCode(errors.ErrBackendInvalid).WithDetails("backend is disabled")
	}

	// 激活前先验证连通性，避免把文件流量切到不可用的后端
	if err := s.testBackend(backend); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.StorageBackend{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(backend).Update("is_active", true).Error
	})
	if err != nil {
		logger.Errorf("[存储后端] 激活后端失败, ID: %d, 错误: %v", id, err)
		return nil, errors.Wrap(errors.ErrCatalogUpdate, err)
	}

	backend.IsActive = true
	logger.Infof("[存储后端] 激活后端成功, ID: %d, 名称: %s, 提供商: %s",
		backend.ID, backend.Name, backend.Provider)
	return backend, nil
}

// DeactivateBackend 取消指定后端的激活状态
func (s *backendService) DeactivateBackend(id uint) error {
	backend, err := s.GetBackend(id)
	if err != nil {
		return err
	}
	if !backend.IsActive {
		return nil
	}

	if err := s.db.Model(backend).Update("is_active", false).Error; err != nil {
		logger.Errorf("[存储后端] 取消激活后端失败, ID: %d, 错误: %v", id, err)
		return errors.Wrap(errors.ErrCatalogUpdate, err)
	}

	logger.Infof("[存储后端] 取消激活后端成功, ID: %d, 名称: %s", id, backend.Name)
	return nil
}

// TestBackend 测试指定后端的连通性
func (s *backendService) TestBackend(id uint) error {
	backend, err := s.GetBackend(id)
	if err != nil {
		return err
	}
	return s.testBackend(backend)
}

// testBackend 创建存储实例并执行连接测试
func (s *backendService) testBackend(backend *database.StorageBackend) error {
	store, err := s.factory.CreateStore(backend)
	if err != nil {
		return errors.Wrap(errors.ErrStorageProvider, err)
	}
	if err := store.TestConnection(); err != nil {
		logger.Errorf("[存储后端] 连接测试失败, ID: %d, 名称: %s, 错误: %v",
			backend.ID, backend.Name, err)
		return errors.Wrap(errors.ErrBackendTest, err)
	}
	return nil
}

// ActiveBackend 返回当前激活的后端配置
func (s *backendService) ActiveBackend() (*database.StorageBackend, error) {
	var backend database.StorageBackend
	err := s.db.Where("is_active = ? AND is_enabled = ?", true, true).First(&backend).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCatalogQuery, err)
	}
	return &backend, nil
}
