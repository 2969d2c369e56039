// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/response"
	"github.com/weiwangfds/filecatalog/internal/service"
)

// FileHandler 文件处理器
// @Description 文件管理相关的HTTP处理器
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// parseFileInfo 解析multipart表单中的文件元数据
// fileInfo部分为FileRecord的JSON编码，缺失或非法时返回错误
func parseFileInfo(c *gin.Context) (*database.FileRecord, error) {
	raw := c.PostForm("fileInfo")
	if raw == "" {
		return nil, fmt.Errorf("fileInfo form field is required")
	}

	var info database.FileRecord
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("invalid fileInfo json: %w", err)
	}
	return &info, nil
}

// ListFiles 获取文件记录列表
// @Summary 获取文件记录列表
// @Description 按等值条件查询文件记录，支持name、className、version过滤和可选分页
// @Tags 文件管理
// @Produce json
// @Param name query string false "按逻辑文件名过滤"
// @Param className query string false "按分类名过滤"
// @Param version query int false "按版本号过滤"
// @Param page query int false "页码，从1开始"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response "文件记录列表"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	filter := make(map[string]interface{})
	if name := c.Query("name"); name != "" {
		filter["name"] = name
	}
	if className := c.Query("className"); className != "" {
		filter["className"] = className
	}
	if versionStr := c.Query("version"); versionStr != "" {
		version, err := strconv.ParseInt(versionStr, 10, 64)
		if err != nil {
			response.BadRequest(c, "版本号必须为整数")
			return
		}
		filter["version"] = version
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	records, total, err := h.fileService.ListFiles(filter, page, pageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if page > 0 && pageSize > 0 {
		response.SuccessWithPage(c, records, total, page, pageSize)
		return
	}
	response.Success(c, gin.H{
		"entities": records,
		"total":    total,
	})
}

// AddFile 上传文件
// @Summary 上传文件
// @Description 上传文件内容并创建目录记录，表单需包含file（文件内容）和fileInfo（元数据JSON）
// @Tags 文件管理
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件内容"
// @Param fileInfo formData string true "文件元数据JSON"
// @Success 201 {object} response.Response "创建完成的文件记录"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/files [post]
func (h *FileHandler) AddFile(c *gin.Context) {
	info, err := parseFileInfo(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "未选择文件或文件无效")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalServerError(c, "无法打开上传的文件")
		return
	}
	defer src.Close()

	created, err := h.fileService.AddFile(src, info)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, created)
}

// UpdateFile 更新文件
// @Summary 更新文件
// @Description 更新已有记录的文件内容和元数据，fileInfo中必须包含记录ID
// @Tags 文件管理
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "新的文件内容"
// @Param fileInfo formData string true "文件元数据JSON（含id）"
// @Success 201 {object} response.Response "更新后的文件记录"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 404 {object} response.Response "文件记录不存在"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/files [put]
func (h *FileHandler) UpdateFile(c *gin.Context) {
	info, err := parseFileInfo(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if info.ID == 0 {
		response.BadRequest(c, "文件ID不能为空")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "未选择文件或文件无效")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalServerError(c, "无法打开上传的文件")
		return
	}
	defer src.Close()

	updated, err := h.fileService.UpdateFile(src, info)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, updated)
}

// GetFile 获取文件记录
// @Summary 获取文件记录
// @Description 根据记录ID获取文件元数据
// @Tags 文件管理
// @Produce json
// @Param id path int true "文件记录ID"
// @Success 200 {object} response.Response "文件记录"
// @Failure 400 {object} response.Response "文件ID无效"
// @Failure 404 {object} response.Response "文件记录不存在"
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "文件ID无效")
		return
	}

	record, err := h.fileService.GetFile(id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, record)
}

// RemoveFile 删除文件
// @Summary 删除文件
// @Description 删除文件记录并尽力删除对应的存储内容，返回被删除的记录
// @Tags 文件管理
// @Produce json
// @Param id path int true "文件记录ID"
// @Success 200 {object} response.Response "被删除的文件记录"
// @Failure 400 {object} response.Response "文件ID无效"
// @Failure 404 {object} response.Response "文件记录不存在"
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) RemoveFile(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "文件ID无效")
		return
	}

	record, err := h.fileService.RemoveFile(id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, record)
}

// DownloadFile 下载文件
// @Summary 下载文件
// @Description 根据记录ID下载文件内容
// @Tags 文件管理
// @Produce application/octet-stream
// @Param fileId path int true "文件记录ID"
// @Success 200 {file} binary "文件内容"
// @Failure 400 {object} response.Response "文件ID无效"
// @Failure 404 {object} response.Response "文件记录不存在"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/files/download/{fileId} [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, err := parseRecordID(c.Param("fileId"))
	if err != nil {
		response.BadRequest(c, "文件ID无效")
		return
	}

	body, record, err := h.fileService.DownloadFile(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.Name))
	c.Header("Content-Type", "application/octet-stream")

	// 内容长度未知，直接把存储流透传给客户端
	c.DataFromReader(200, -1, "application/octet-stream", body, nil)
}

// parseRecordID 解析路径参数中的记录ID
func parseRecordID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid record id: %q", raw)
	}
	return uint(id), nil
}
