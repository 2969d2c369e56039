// Package service 实现文件目录的核心业务逻辑
// 本文件实现Blob清理记录器：更新、删除路径上所有"尽力而为"的Blob删除
// 都经由记录器执行，删除失败只记日志和清理流水，从不让用户操作失败
package service

import (
	"time"

	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"gorm.io/gorm"
)

// CleanupRecorder Blob清理记录器接口
// 每次调用都会在cleanup_logs表留下一条流水，供清理服务重试和人工排查
type CleanupRecorder interface {
	// CleanupBlob 尽力删除指定存储键的Blob并记录结果
	// action为replace或remove；删除失败时写入failed状态等待清理服务重试
	CleanupBlob(recordID uint, storedFileName, action string)

	// RecordOrphan 登记一个孤儿Blob
	// 目录写入失败后遗留的Blob不做内联补偿删除，只登记为pending，
	// 由清理服务在后台收割
	RecordOrphan(storedFileName string)
}

// cleanupRecorder Blob清理记录器实现
type cleanupRecorder struct {
	db            *gorm.DB
	store         storage.BlobStore
	retryInterval time.Duration // 失败任务的最小重试间隔
}

// NewCleanupRecorder 创建Blob清理记录器实例
func NewCleanupRecorder(db *gorm.DB, store storage.BlobStore, retryInterval time.Duration) CleanupRecorder {
	if retryInterval <= 0 {
		retryInterval = 30 * time.Second
	}
	return &cleanupRecorder{
		db:            db,
		store:         store,
		retryInterval: retryInterval,
	}
}

// CleanupBlob 尽力删除指定存储键的Blob并记录结果
func (r *cleanupRecorder) CleanupBlob(recordID uint, storedFileName, action string) {
	if storedFileName == "" {
		return
	}

	entry := database.CleanupLog{
		RecordID:       recordID,
		StoredFileName: storedFileName,
		Action:         action,
		Attempts:       1,
	}

	deleted, err := r.store.Delete(storedFileName)
	if err != nil {
		logger.Warnf("[清理] 删除Blob失败, 稍后由清理服务重试, 存储键: %s, 类型: %s, 错误: %v",
			storedFileName, action, err)
		entry.Status = database.CleanupStatusFailed
		entry.ErrorMsg = err.Error()
		entry.NextRetry = time.Now().Add(r.retryInterval)
	} else {
		if deleted {
			logger.Infof("[清理] 已删除Blob, 存储键: %s, 类型: %s", storedFileName, action)
		} else {
			logger.Infof("[清理] Blob已不存在, 存储键: %s, 类型: %s", storedFileName, action)
		}
		entry.Status = database.CleanupStatusSuccess
	}

	if err := r.db.Create(&entry).Error; err != nil {
		// 流水写入失败同样不能影响用户操作，只能靠日志兜底
		logger.Errorf("[清理] 写入清理流水失败, 存储键: %s, 错误: %v", storedFileName, err)
	}
}

// RecordOrphan 登记一个孤儿Blob
func (r *cleanupRecorder) RecordOrphan(storedFileName string) {
	if storedFileName == "" {
		return
	}

	logger.Warnf("[清理] 登记孤儿Blob, 存储键: %s", storedFileName)

	entry := database.CleanupLog{
		StoredFileName: storedFileName,
		Action:         database.CleanupActionOrphan,
		Status:         database.CleanupStatusPending,
		NextRetry:      time.Now(),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		logger.Errorf("[清理] 写入孤儿Blob流水失败, 存储键: %s, 错误: %v", storedFileName, err)
	}
}
