// Package database 定义了文件目录相关的数据库模型
// 包含文件记录和清理日志等核心数据模型
package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AuxMap 文件记录的扩展信息映射
// 对调用方完全不透明，以JSON文本形式持久化
type AuxMap map[string]string

// Value 实现driver.Valuer接口，序列化为JSON
func (m AuxMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan 实现sql.Scanner接口，从JSON反序列化
func (m *AuxMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for AuxMap: %T", value)
	}
}

// FileRecord 文件记录模型
// 每条记录对应Blob存储中的一个二进制对象，StoredFileName是该对象的存储键
// 不变量：除更新/删除操作的短暂窗口外，每条存活记录的Blob一定存在
type FileRecord struct {
	ID             uint           `gorm:"primarykey" json:"id"`                             // 主键ID，由目录在插入时分配
	Name           string         `gorm:"not null;size:255;index" json:"name"`              // 调用方提供的逻辑文件名
	ClassName      string         `gorm:"size:255" json:"className,omitempty"`              // 可选的分类名
	StoredFileName string         `gorm:"uniqueIndex;not null;size:500" json:"storedFileName"` // Blob存储键，仅由文件服务生成，不接受外部输入
	Version        int64          `gorm:"not null;default:0;index" json:"version"`          // 调用方维护的版本号
	Timestamp      int64          `gorm:"not null" json:"timestamp"`                        // 写入时刻（毫秒时间戳），由文件服务设置
	AuxiliaryInfo  AuxMap         `gorm:"type:text" json:"auxiliaryInfo,omitempty"`         // 不透明扩展信息
	CreatedAt      time.Time      `json:"-"`                                                // 记录创建时间
	UpdatedAt      time.Time      `json:"-"`                                                // 记录最后更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                   // 软删除时间戳
}

// TableName 指定FileRecord模型对应的数据库表名
func (FileRecord) TableName() string {
	return "file_records"
}

// 清理任务状态
const (
	CleanupStatusPending   = "pending"   // 待处理
	CleanupStatusSuccess   = "success"   // 删除成功
	CleanupStatusFailed    = "failed"    // 删除失败，等待重试
	CleanupStatusAbandoned = "abandoned" // 超过重试上限，放弃
)

// 清理任务类型
const (
	CleanupActionReplace = "replace" // 更新操作替换后的旧Blob
	CleanupActionRemove  = "remove"  // 删除操作对应的Blob
	CleanupActionOrphan  = "orphan"  // 目录写入失败后遗留的孤儿Blob
)

// CleanupLog Blob清理日志模型
// 记录每一次尽力而为的Blob删除及其结果：更新/删除路径上的清理失败
// 不会使用户操作失败，只会留下一条可观测、可重试的日志
type CleanupLog struct {
	ID             uint           `gorm:"primarykey" json:"id"`                       // 主键ID，自增
	RecordID       uint           `gorm:"index" json:"record_id"`                     // 关联的文件记录ID，孤儿Blob可能为0
	StoredFileName string         `gorm:"not null;size:500;index" json:"stored_file_name"` // 待删除Blob的存储键
	Action         string         `gorm:"not null;size:20" json:"action"`             // 清理类型：replace、remove、orphan
	Status         string         `gorm:"not null;size:20;index" json:"status"`       // 状态：pending、success、failed、abandoned
	ErrorMsg       string         `gorm:"type:text" json:"error_msg"`                 // 删除失败时的错误信息
	Attempts       int            `gorm:"default:0" json:"attempts"`                  // 已尝试次数
	NextRetry      time.Time      `gorm:"index" json:"next_retry"`                    // 下次重试时间
	CreatedAt      time.Time      `json:"created_at"`                                 // 日志创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                 // 日志最后更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                             // 软删除时间戳
}

// TableName 指定CleanupLog模型对应的数据库表名
func (CleanupLog) TableName() string {
	return "cleanup_logs"
}
