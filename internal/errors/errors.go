// Package errors 提供应用程序统一的错误类型和错误码定义
// 核心服务返回带错误码的AppError，HTTP适配层根据错误码映射状态码，
// 调用方必须按错误种类处理，而不是依赖兜底异常
package errors

import (
	"fmt"

	"github.com/weiwangfds/filecatalog/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess        ErrorCode = 0    // 成功
	ErrInternalServer ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams  ErrorCode = 1001 // 参数错误（ValidationError）
	ErrNotFound       ErrorCode = 1004 // 资源未找到

	// 文件相关错误码 (2000-2999)
	ErrFileNotFound       ErrorCode = 2000 // 文件未找到（NotFound）
	ErrFileUploadFailed   ErrorCode = 2002 // 文件上传失败
	ErrFileUpdateFailed   ErrorCode = 2003 // 文件更新失败
	ErrFileDeleteFailed   ErrorCode = 2004 // 文件删除失败
	ErrFileDownloadFailed ErrorCode = 2005 // 文件下载失败
	ErrFileInfoInvalid    ErrorCode = 2006 // 文件元数据无效
	ErrFileIDRequired     ErrorCode = 2007 // 缺少文件ID

	// Blob存储相关错误码 (3000-3999, StorageError)
	ErrStoragePut         ErrorCode = 3000 // Blob写入失败
	ErrStorageGet         ErrorCode = 3001 // Blob读取失败
	ErrStorageDelete      ErrorCode = 3002 // Blob删除失败
	ErrStorageConnection  ErrorCode = 3003 // 存储后端连接失败
	ErrStorageProvider    ErrorCode = 3004 // 存储提供商不支持

	// 目录/数据库相关错误码 (4000-4999, CatalogError)
	ErrCatalogInsert ErrorCode = 4000 // 目录记录插入失败
	ErrCatalogUpdate ErrorCode = 4001 // 目录记录更新失败
	ErrCatalogDelete ErrorCode = 4002 // 目录记录删除失败
	ErrCatalogQuery  ErrorCode = 4003 // 目录查询失败
	ErrRecordNotFound ErrorCode = 4006 // 记录未找到（NotFound）

	// 存储后端配置相关错误码 (5000-5999)
	ErrBackendNotFound ErrorCode = 5000 // 后端配置未找到
	ErrBackendInvalid  ErrorCode = 5001 // 后端配置无效
	ErrBackendTest     ErrorCode = 5002 // 后端连接测试失败
)

// AppError 应用错误结构体
// @Description 应用程序统一错误格式
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，支持errors.Is/As链
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// IsNotFound 判断错误是否为"未找到"类错误
// HTTP适配层据此映射404
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrNotFound || e.Code == ErrFileNotFound ||
		e.Code == ErrRecordNotFound || e.Code == ErrBackendNotFound
}

// IsValidation 判断错误是否为参数校验类错误
// HTTP适配层据此映射400
func (e *AppError) IsValidation() bool {
	return e.Code == ErrInvalidParams || e.Code == ErrFileInfoInvalid ||
		e.Code == ErrFileIDRequired || e.Code == ErrBackendInvalid
}

// IsStorage 判断错误是否来自Blob存储后端
func (e *AppError) IsStorage() bool {
	return e.Code >= 3000 && e.Code < 4000
}

// IsCatalog 判断错误是否来自元数据目录
func (e *AppError) IsCatalog() bool {
	return e.Code >= 4000 && e.Code < 5000 && e.Code != ErrRecordNotFound
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewByCode 根据错误码创建应用错误，消息取自i18n语言包
func NewByCode(code ErrorCode) *AppError {
	return &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
	}
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       GetErrorMessage(code),
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// GetAppError 从错误中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:        "success",
	ErrInternalServer: "internal_server_error",
	ErrInvalidParams:  "invalid_params",
	ErrNotFound:       "not_found",

	ErrFileNotFound:       "file_not_found",
	ErrFileUploadFailed:   "file_upload_failed",
	ErrFileUpdateFailed:   "file_update_failed",
	ErrFileDeleteFailed:   "file_delete_failed",
	ErrFileDownloadFailed: "file_download_failed",
	ErrFileInfoInvalid:    "file_info_invalid",
	ErrFileIDRequired:     "file_id_required",

	ErrStoragePut:        "storage_put_failed",
	ErrStorageGet:        "storage_get_failed",
	ErrStorageDelete:     "storage_delete_failed",
	ErrStorageConnection: "storage_connection_failed",
	ErrStorageProvider:   "storage_provider_unsupported",

	ErrCatalogInsert:  "catalog_insert_failed",
	ErrCatalogUpdate:  "catalog_update_failed",
	ErrCatalogDelete:  "catalog_delete_failed",
	ErrCatalogQuery:   "catalog_query_failed",
	ErrRecordNotFound: "record_not_found",

	ErrBackendNotFound: "backend_not_found",
	ErrBackendInvalid:  "backend_invalid",
	ErrBackendTest:     "backend_test_failed",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
