// Package service 实现文件目录的核心业务逻辑
// 本文件实现Blob清理服务：后台收割清理流水中待处理和失败的删除任务，
// 包括目录写入失败遗留的孤儿Blob和删除失败的旧Blob
package service

import (
	"sync"
	"time"

	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"gorm.io/gorm"
)

// CleanupService Blob清理服务
// 周期性扫描cleanup_logs表，重试状态为pending或failed且到达重试时间的任务；
// 重试间隔按尝试次数平方递增，超过最大重试次数后放弃并标记为abandoned
type CleanupService struct {
	db            *gorm.DB
	store         storage.BlobStore
	maxRetries    int           // 单条任务最大重试次数
	retryInterval time.Duration // 最小重试间隔
	scanInterval  time.Duration // 扫描周期

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewCleanupService 创建Blob清理服务实例
// 参数:
//   - db: 数据库连接，用于读写清理流水
//   - store: Blob存储，删除操作的执行目标
//   - maxRetries: 单条任务最大重试次数
//   - retryInterval: 最小重试间隔
//   - scanInterval: 扫描周期
func NewCleanupService(db *gorm.DB, store storage.BlobStore, maxRetries int, retryInterval, scanInterval time.Duration) *CleanupService {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if retryInterval <= 0 {
		retryInterval = 30 * time.Second
	}
	if scanInterval <= 0 {
		scanInterval = 10 * time.Second
	}
	return &CleanupService{
		db:            db,
		store:         store,
		maxRetries:    maxRetries,
		retryInterval: retryInterval,
		scanInterval:  scanInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动后台清理循环
func (s *CleanupService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		logger.Warn("[清理服务] 服务已在运行中")
		return
	}
	s.started = true

	logger.Infof("[清理服务] 启动, 扫描周期: %v, 最大重试次数: %d", s.scanInterval, s.maxRetries)

	s.wg.Add(1)
	go s.run()
}

// Stop 停止后台清理循环并等待当前批次处理完成
func (s *CleanupService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	logger.Info("[清理服务] 已停止")
}

// run 后台清理循环
func (s *CleanupService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if n := s.ProcessOnce(); n > 0 {
				logger.Infof("[清理服务] 本轮处理完成, 任务数: %d", n)
			}
		}
	}
}

// ProcessOnce 扫描并处理一批到期的清理任务，返回处理的任务数
func (s *CleanupService) ProcessOnce() int {
	var entries []database.CleanupLog
	err := s.db.
		Where("status IN ?", []string{database.CleanupStatusPending, database.CleanupStatusFailed}).
		Where("next_retry <= ?", time.Now()).
		Order("next_retry ASC").
		Limit(100).
		Find(&entries).Error
	if err != nil {
		logger.Errorf("[清理服务] 扫描清理流水失败, 错误: %v", err)
		return 0
	}

	for i := range entries {
		s.processEntry(&entries[i])
	}
	return len(entries)
}

// processEntry 处理单条清理任务
func (s *CleanupService) processEntry(entry *database.CleanupLog) {
	deleted, err := s.store.Delete(entry.StoredFileName)
	entry.Attempts++

	if err != nil {
		entry.ErrorMsg = err.Error()
		if entry.Attempts >= s.maxRetries {
			entry.Status = database.CleanupStatusAbandoned
			logger.Errorf("[清理服务] 超过最大重试次数, 放弃清理, 存储键: %s, 尝试次数: %d, 错误: %v",
				entry.StoredFileName, entry.Attempts, err)
		} else {
			entry.Status = database.CleanupStatusFailed
			entry.NextRetry = time.Now().Add(s.backoff(entry.Attempts))
			logger.Warnf("[清理服务] 清理失败, 将于%v后重试, 存储键: %s, 尝试次数: %d, 错误: %v",
				s.backoff(entry.Attempts), entry.StoredFileName, entry.Attempts, err)
		}
	} else {
		entry.Status = database.CleanupStatusSuccess
		entry.ErrorMsg = ""
		if deleted {
			logger.Infof("[清理服务] 已删除Blob, 存储键: %s, 类型: %s", entry.StoredFileName, entry.Action)
		} else {
			logger.Infof("[清理服务] Blob已不存在, 标记完成, 存储键: %s", entry.StoredFileName)
		}
	}

	if err := s.db.Save(entry).Error; err != nil {
		logger.Errorf("[清理服务] 更新清理流水失败, ID: %d, 错误: %v", entry.ID, err)
	}
}

// backoff 按尝试次数计算重试间隔，平方递增
func (s *CleanupService) backoff(attempts int) time.Duration {
	return time.Duration(attempts*attempts) * s.retryInterval
}
