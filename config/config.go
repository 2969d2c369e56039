// Package config 提供应用程序配置加载功能
// 基于viper实现，支持配置文件和环境变量两种来源
// 包含服务器、数据库、存储和日志等核心配置项
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序总配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Storage  StorageConfig  `mapstructure:"storage"`  // Blob存储配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`  // 孤儿Blob清理配置
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`           // 监听端口
	ReadTimeout  int    `mapstructure:"read_timeout"`   // 读超时（秒）
	WriteTimeout int    `mapstructure:"write_timeout"`  // 写超时（秒）
	EnableHTTPS  bool   `mapstructure:"enable_https"`   // 是否启用HTTPS
	EnableHTTP2  bool   `mapstructure:"enable_http2"`   // 是否启用HTTP/2（仅HTTPS下生效）
	TLSCertFile  string `mapstructure:"tls_cert_file"`  // TLS证书文件路径
	TLSKeyFile   string `mapstructure:"tls_key_file"`   // TLS私钥文件路径
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // 数据库驱动，目前支持sqlite
	DSN             string `mapstructure:"dsn"`               // 数据源名称
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // 最大打开连接数
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 连接最大生命周期（秒）
}

// StorageConfig Blob存储配置
// 本地磁盘存储始终可用，作为未激活云端后端时的默认存储
type StorageConfig struct {
	LocalPath string `mapstructure:"local_path"` // 本地Blob存储目录
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`     // 日志级别 (debug, info, warn, error)
	Format   string `mapstructure:"format"`    // 日志格式 (json, text)
	Output   string `mapstructure:"output"`    // 输出方式 (console, file, both)
	FilePath string `mapstructure:"file_path"` // 日志文件路径
}

// CleanupConfig 孤儿Blob清理服务配置
type CleanupConfig struct {
	MaxRetries       int `mapstructure:"max_retries"`        // 单条清理任务最大重试次数
	RetryIntervalSec int `mapstructure:"retry_interval_sec"` // 最小重试间隔（秒）
	ScanIntervalSec  int `mapstructure:"scan_interval_sec"`  // 清理日志扫描间隔（秒）
}

// Load 加载应用程序配置
// 查找顺序: ./config.yaml -> ./config/config.yaml，环境变量以FILECATALOG_为前缀覆盖
// 返回:
//
//	*Config - 配置实例
//	error - 加载失败时返回错误
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FILECATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值，其他错误直接返回
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置各配置项的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", false)

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/filecatalog.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	// 存储默认配置
	v.SetDefault("storage.local_path", "data/blobs")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "logs/app.log")

	// 清理服务默认配置
	v.SetDefault("cleanup.max_retries", 5)
	v.SetDefault("cleanup.retry_interval_sec", 30)
	v.SetDefault("cleanup.scan_interval_sec", 10)
}
