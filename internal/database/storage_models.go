// Package database 定义了Blob存储后端相关的数据库模型
package database

import (
	"time"

	"gorm.io/gorm"
)

// StorageBackend 存储后端配置模型
// 用于管理不同Blob存储后端的配置信息，支持本地磁盘、阿里云OSS、腾讯云COS、七牛云Kodo
// 系统中最多有一个激活配置；没有激活配置时文件服务退回到本地磁盘存储
type StorageBackend struct {
	ID        uint           `gorm:"primarykey" json:"id"`                          // 主键ID，自增
	Name      string         `gorm:"not null;size:100" json:"name"`                 // 配置名称，用于标识不同的后端
	Provider  string         `gorm:"not null;size:20" json:"provider"`              // 存储提供商：local、aliyun、tencent、qiniu
	Region    string         `gorm:"size:50" json:"region"`                         // 服务区域，如：cn-hangzhou、ap-beijing等
	Bucket    string         `gorm:"size:100" json:"bucket"`                        // 存储桶名称
	AccessKey string         `gorm:"size:100" json:"access_key"`                    // 访问密钥ID
	SecretKey string         `gorm:"size:200" json:"secret_key,omitempty"`          // 访问密钥Secret，敏感信息
	Endpoint  string         `gorm:"size:200" json:"endpoint"`                      // 自定义服务端点URL，可选配置
	BasePath  string         `gorm:"size:500" json:"base_path"`                     // 本地存储的根目录（仅provider=local时使用）
	IsActive  bool           `gorm:"default:false" json:"is_active"`                // 是否为当前激活使用的后端
	IsEnabled bool           `gorm:"default:true" json:"is_enabled"`                // 配置是否启用，禁用后不可激活
	CreatedAt time.Time      `json:"created_at"`                                    // 配置创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                    // 配置最后修改时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间戳
}

// TableName 指定StorageBackend模型对应的数据库表名
func (StorageBackend) TableName() string {
	return "storage_backends"
}
