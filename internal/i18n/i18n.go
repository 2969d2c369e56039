// Package i18n 提供国际化支持
// 负责管理应用程序的语言包和翻译功能
package i18n

import (
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/filecatalog/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
)

var (
	instance *I18n
	once     sync.Once

	// 语言包存储
	translations = map[string]map[string]string{
		LangZhCN: {
			"success":               "成功",
			"internal_server_error": "服务器内部错误",
			"invalid_params":        "参数错误",
			"not_found":             "资源未找到",
			"service_unavailable":   "服务不可用",

			"file_not_found":      "文件未找到",
			"file_upload_failed":  "文件上传失败",
			"file_update_failed":  "文件更新失败",
			"file_delete_failed":  "文件删除失败",
			"file_download_failed": "文件下载失败",
			"file_info_invalid":   "文件元数据无效",
			"file_id_required":    "文件ID不能为空",

			"storage_put_failed":       "Blob写入存储失败",
			"storage_get_failed":       "Blob读取失败",
			"storage_delete_failed":    "Blob删除失败",
			"storage_connection_failed": "存储后端连接失败",
			"storage_provider_unsupported": "存储提供商不支持",

			"catalog_insert_failed": "目录记录插入失败",
			"catalog_update_failed": "目录记录更新失败",
			"catalog_delete_failed": "目录记录删除失败",
			"catalog_query_failed":  "目录查询失败",
			"record_not_found":      "记录未找到",

			"backend_not_found":     "存储后端配置未找到",
			"backend_invalid":       "存储后端配置无效",
			"backend_test_failed":   "存储后端连接测试失败",

			"unknown_error": "未知错误",
		},
		LangEnUS: {
			"success":               "Success",
			"internal_server_error": "Internal Server Error",
			"invalid_params":        "Invalid Parameters",
			"not_found":             "Resource Not Found",
			"service_unavailable":   "Service Unavailable",

			"file_not_found":      "File Not Found",
			"file_upload_failed":  "File Upload Failed",
			"file_update_failed":  "File Update Failed",
			"file_delete_failed":  "File Delete Failed",
			"file_download_failed": "File Download Failed",
			"file_info_invalid":   "File Info Invalid",
			"file_id_required":    "File ID Required",

			"storage_put_failed":       "Blob Put Failed",
			"storage_get_failed":       "Blob Get Failed",
			"storage_delete_failed":    "Blob Delete Failed",
			"storage_connection_failed": "Storage Connection Failed",
			"storage_provider_unsupported": "Storage Provider Not Supported",

			"catalog_insert_failed": "Catalog Insert Failed",
			"catalog_update_failed": "Catalog Update Failed",
			"catalog_delete_failed": "Catalog Delete Failed",
			"catalog_query_failed":  "Catalog Query Failed",
			"record_not_found":      "Record Not Found",

			"backend_not_found":   "Storage Backend Not Found",
			"backend_invalid":     "Storage Backend Invalid",
			"backend_test_failed": "Storage Backend Test Failed",

			"unknown_error": "Unknown Error",
		},
	}
)

// I18n 国际化管理器
type I18n struct {
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangZhCN,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 初始化翻译器
func (i *I18n) initTranslators() {
	zhCN := zh.New()
	enUS := en_US.New()
	uni := ut.New(zhCN, enUS, zhCN)

	// 注册支持的语言 - 使用locale库的标识符
	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败 for language %s (locale: %s): translator not found", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}

	logger.Info("国际化翻译器初始化完成")
}

// Translate 根据键和语言获取翻译
func (i *I18n) Translate(key, lang string) string {
	if translation, found := translations[lang][key]; found {
		return translation
	}

	// 如果当前语言没有找到，尝试在默认语言中查找
	if lang != i.defaultLang {
		if translation, found := translations[i.defaultLang][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// SetDefaultLanguage 设置默认语言
func (i *I18n) SetDefaultLanguage(lang string) {
	i.defaultLang = lang
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}

// GetSupportedLanguages 获取支持的语言列表
func (i *I18n) GetSupportedLanguages() []string {
	langs := make([]string, 0, len(i.translators))
	for lang := range i.translators {
		langs = append(langs, lang)
	}
	return langs
}
