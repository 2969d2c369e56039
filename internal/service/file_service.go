// Package service 实现文件目录的核心业务逻辑
// 本文件实现文件服务：协调元数据目录和Blob存储，保证两者的一致性
//
// 写入顺序约定：
//   - 新增/更新时先写Blob，成功后再写目录记录，Blob写入失败不会产生任何目录变更
//   - 更新时旧Blob在目录记录持久化之后才删除，删除失败只记录清理流水
//   - 删除时先删目录记录，再尽力删除Blob
//
// 因此除操作中途的短暂窗口外，每条存活记录的Blob一定存在；
// 反向可能出现无记录的孤儿Blob，由清理服务在后台收割
package service

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weiwangfds/filecatalog/internal/catalog"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/errors"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"github.com/weiwangfds/filecatalog/internal/storage"
)

// FileService 文件服务接口
// 提供文件的上传、更新、查询、删除和下载功能
// 所有方法返回的错误均为*errors.AppError，调用方按错误码分类处理
type FileService interface {
	// ListFiles 按等值条件查询文件记录列表
	// 参数:
	//   - filter: 等值过滤条件，支持name、className、version，为空时返回全部
	//   - page: 页码，从1开始；page或pageSize不大于0时不分页
	//   - pageSize: 每页数量
	//
	// 返回:
	//   - []database.FileRecord: 文件记录列表
	//   - int64: 满足条件的记录总数
	//   - error: 查询过程中的错误信息
	ListFiles(filter map[string]interface{}, page, pageSize int) ([]database.FileRecord, int64, error)

	// AddFile 上传文件内容并创建目录记录
	// 存储键由服务基于逻辑文件名生成，保证全局唯一；
	// Blob写入失败时不会创建记录，目录写入失败时遗留的Blob会登记为孤儿
	// 参数:
	//   - reader: 文件内容流
	//   - info: 文件元数据，Name为空时使用默认前缀file
	//
	// 返回:
	//   - *database.FileRecord: 创建完成的文件记录（含分配的ID和存储键）
	//   - error: 上传过程中的错误信息
	AddFile(reader io.Reader, info *database.FileRecord) (*database.FileRecord, error)

	// UpdateFile 更新已有记录的文件内容和元数据
	// 新内容写入一个全新的存储键，记录持久化成功后再尽力删除旧Blob；
	// 记录不存在时返回未找到错误，从不隐式创建
	UpdateFile(reader io.Reader, info *database.FileRecord) (*database.FileRecord, error)

	// GetFile 根据ID获取文件记录
	GetFile(id uint) (*database.FileRecord, error)

	// RemoveFile 删除文件记录并尽力删除对应的Blob
	// 返回被删除的记录；Blob删除失败不影响本次操作的结果
	RemoveFile(id uint) (*database.FileRecord, error)

	// DownloadFile 打开文件内容流
	// 返回内容流和对应的文件记录，调用者负责关闭内容流
	DownloadFile(id uint) (io.ReadCloser, *database.FileRecord, error)
}

// fileService 文件服务实现
type fileService struct {
	catalog  catalog.FileCatalog
	store    storage.BlobStore
	recorder CleanupRecorder
}

// NewFileService 创建文件服务实例
// 参数:
//   - cat: 元数据目录
//   - store: Blob存储
//   - recorder: Blob清理记录器
func NewFileService(cat catalog.FileCatalog, store storage.BlobStore, recorder CleanupRecorder) FileService {
	return &fileService{
		catalog:  cat,
		store:    store,
		recorder: recorder,
	}
}

// defaultNamePrefix 逻辑文件名为空时使用的存储键前缀
const defaultNamePrefix = "file"

// sanitizeFileName 清洗逻辑文件名中不适合做存储键的字符
// 只保留字母、数字、点、横线和下划线，其余替换为下划线；
// 连续的点折叠为一个，去掉首尾的点，避免产生相对路径片段
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultNamePrefix
	}

	var b strings.Builder
	b.Grow(len(name))
	var prev rune
	for _, r := range name {
		switch {
		case r == '.':
			if prev != '.' {
				b.WriteRune(r)
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			b.WriteRune(r)
		default:
			r = '_'
			b.WriteRune(r)
		}
		prev = r
	}

	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return defaultNamePrefix
	}
	return cleaned
}

// storedFileName 基于逻辑文件名生成全局唯一的存储键
// 格式: <清洗后的文件名>-<uuid>
func storedFileName(name string) string {
	return sanitizeFileName(name) + "-" + uuid.New().String()
}

// ListFiles 按等值条件查询文件记录列表
func (s *fileService) ListFiles(filter map[string]interface{}, page, pageSize int) ([]database.FileRecord, int64, error) {
	offset, limit := 0, 0
	if page > 0 && pageSize > 0 {
		offset = (page - 1) * pageSize
		limit = pageSize
	}
	return s.catalog.List(filter, offset, limit)
}

// AddFile 上传文件内容并创建目录记录
func (s *fileService) AddFile(reader io.Reader, info *database.FileRecord) (*database.FileRecord, error) {
	if reader == nil || info == nil {
		return nil, errors.NewByCode(errors.ErrFileInfoInvalid)
	}

	key := storedFileName(info.Name)
	logger.Infof("[文件服务] 开始上传文件, 名称: %s, 存储键: %s", info.Name, key)

	// 先写Blob，失败时目录没有任何变更
	if _, err := s.store.Put(key, reader); err != nil {
		logger.Errorf("[文件服务] Blob写入失败, 存储键: %s, 错误: %v", key, err)
		return nil, errors.Wrap(errors.ErrStoragePut, err)
	}

	info.ID = 0
	info.StoredFileName = key
	info.Timestamp = time.Now().UnixMilli()

	created, err := s.catalog.Insert(info)
	if err != nil {
		// 目录写入失败时不做内联补偿，登记孤儿Blob由清理服务收割
		s.recorder.RecordOrphan(key)
		return nil, err
	}

	logger.Infof("[文件服务] 文件上传成功, ID: %d, 存储键: %s", created.ID, created.StoredFileName)
	return created, nil
}

// UpdateFile 更新已有记录的文件内容和元数据
func (s *fileService) UpdateFile(reader io.Reader, info *database.FileRecord) (*database.FileRecord, error) {
	if reader == nil || info == nil {
		return nil, errors.NewByCode(errors.ErrFileInfoInvalid)
	}
	if info.ID == 0 {
		return nil, errors.NewByCode(errors.ErrFileIDRequired)
	}

	existing, err := s.catalog.Get(info.ID)
	if err != nil {
		return nil, err
	}
	oldKey := existing.StoredFileName

	key := storedFileName(info.Name)
	logger.Infof("[文件服务] 开始更新文件, ID: %d, 新存储键: %s", info.ID, key)

	if _, err := s.store.Put(key, reader); err != nil {
		logger.Errorf("[文件服务] Blob写入失败, 存储键: %s, 错误: %v", key, err)
		return nil, errors.Wrap(errors.ErrStoragePut, err)
	}

	info.StoredFileName = key
	info.Timestamp = time.Now().UnixMilli()
	info.CreatedAt = existing.CreatedAt

	updated, err := s.catalog.Upsert(info)
	if err != nil {
		s.recorder.RecordOrphan(key)
		return nil, err
	}

	// 记录已指向新Blob，旧Blob尽力删除，失败只留清理流水
	if oldKey != "" && oldKey != key {
		s.recorder.CleanupBlob(updated.ID, oldKey, database.CleanupActionReplace)
	}

	logger.Infof("[文件服务] 文件更新成功, ID: %d, 存储键: %s", updated.ID, updated.StoredFileName)
	return updated, nil
}

// GetFile 根据ID获取文件记录
func (s *fileService) GetFile(id uint) (*database.FileRecord, error) {
	return s.catalog.Get(id)
}

// RemoveFile 删除文件记录并尽力删除对应的Blob
func (s *fileService) RemoveFile(id uint) (*database.FileRecord, error) {
	record, err := s.catalog.Delete(id)
	if err != nil {
		return nil, err
	}

	s.recorder.CleanupBlob(record.ID, record.StoredFileName, database.CleanupActionRemove)

	logger.Infof("[文件服务] 文件删除成功, ID: %d, 存储键: %s", record.ID, record.StoredFileName)
	return record, nil
}

// DownloadFile 打开文件内容流
func (s *fileService) DownloadFile(id uint) (io.ReadCloser, *database.FileRecord, error) {
	record, err := s.catalog.Get(id)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.store.Get(record.StoredFileName)
	if err != nil {
		logger.Errorf("[文件服务] Blob读取失败, ID: %d, 存储键: %s, 错误: %v", id, record.StoredFileName, err)
		return nil, nil, errors.Wrap(errors.ErrStorageGet, err)
	}

	return body, record, nil
}
