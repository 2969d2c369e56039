// Package catalog 提供文件记录的元数据目录
// 基于gorm实现持久化，按数字ID管理记录的增删改查
// 目录只负责记录本身，不关心Blob存储，两者的一致性由文件服务保证
package catalog

import (
	stderrors "errors"

	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/errors"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"gorm.io/gorm"
)

// 可用于等值过滤的记录字段，键为查询参数名，值为数据库列名
var filterableColumns = map[string]string{
	"name":      "name",
	"className": "class_name",
	"version":   "version",
}

// FileCatalog 文件目录接口
// 所有方法返回的错误均为*errors.AppError：
// 记录不存在返回ErrRecordNotFound，其余数据库故障返回ErrCatalog*错误码
type FileCatalog interface {
	// Insert 插入一条新记录并分配ID
	Insert(record *database.FileRecord) (*database.FileRecord, error)

	// Upsert 按ID保存记录，ID为0时等价于Insert
	Upsert(record *database.FileRecord) (*database.FileRecord, error)

	// Get 根据ID获取记录
	Get(id uint) (*database.FileRecord, error)

	// Delete 根据ID删除记录，返回被删除的记录
	Delete(id uint) (*database.FileRecord, error)

	// List 按等值条件查询记录
	// filter为空时返回全部记录；offset/limit用于分页，limit<=0表示不分页
	List(filter map[string]interface{}, offset, limit int) ([]database.FileRecord, int64, error)
}

// gormCatalog 文件目录的gorm实现
type gormCatalog struct {
	db *gorm.DB
}

// New 创建文件目录实例
func New(db *gorm.DB) FileCatalog {
	return &gormCatalog{db: db}
}

// Insert 插入一条新记录并分配ID
func (c *gormCatalog) Insert(record *database.FileRecord) (*database.FileRecord, error) {
	if err := c.db.Create(record).Error; err != nil {
		logger.Errorf("[目录] 插入文件记录失败, 名称: %s, 错误: %v", record.Name, err)
		return nil, errors.Wrap(errors.ErrCatalogInsert, err)
	}
	return record, nil
}

// Upsert 按ID保存记录
// gorm的Save在主键非零时执行全量更新，为零时执行插入
func (c *gormCatalog) Upsert(record *database.FileRecord) (*database.FileRecord, error) {
	if err := c.db.Save(record).Error; err != nil {
		logger.Errorf("[目录] 保存文件记录失败, ID: %d, 错误: %v", record.ID, err)
		return nil, errors.Wrap(errors.ErrCatalogUpdate, err)
	}
	return record, nil
}

// Get 根据ID获取记录
func (c *gormCatalog) Get(id uint) (*database.FileRecord, error) {
	var record database.FileRecord
	if err := c.db.First(&record, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewByCode(errors.ErrRecordNotFound)
		}
		logger.Errorf("[目录] 查询文件记录失败, ID: %d, 错误: %v", id, err)
		return nil, errors.Wrap(errors.ErrCatalogQuery, err)
	}
	return &record, nil
}

// Delete 根据ID删除记录，返回被删除的记录
// 先读取再删除，调用方需要被删记录的StoredFileName做Blob清理
func (c *gormCatalog) Delete(id uint) (*database.FileRecord, error) {
	record, err := c.Get(id)
	if err != nil {
		return nil, err
	}

	if err := c.db.Delete(record).Error; err != nil {
		logger.Errorf("[目录] 删除文件记录失败, ID: %d, 错误: %v", id, err)
		return nil, errors.Wrap(errors.ErrCatalogDelete, err)
	}
	return record, nil
}

// List 按等值条件查询记录
func (c *gormCatalog) List(filter map[string]interface{}, offset, limit int) ([]database.FileRecord, int64, error) {
	query := c.db.Model(&database.FileRecord{})

	// 只接受白名单字段的等值过滤，未知字段直接忽略
	for field, value := range filter {
		if column, ok := filterableColumns[field]; ok {
			query = query.Where(column+" = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("[目录] 统计文件记录失败, 错误: %v", err)
		return nil, 0, errors.Wrap(errors.ErrCatalogQuery, err)
	}

	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var records []database.FileRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		logger.Errorf("[目录] 查询文件记录列表失败, 错误: %v", err)
		return nil, 0, errors.Wrap(errors.ErrCatalogQuery, err)
	}

	return records, total, nil
}
