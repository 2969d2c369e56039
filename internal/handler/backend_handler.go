// Package handler 提供HTTP请求处理器
// 本文件实现存储后端配置管理的HTTP接口
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/response"
	"github.com/weiwangfds/filecatalog/internal/service"
)

// BackendHandler 存储后端配置处理器
// @Description 存储后端配置管理相关的HTTP处理器
type BackendHandler struct {
	backendService service.BackendService
}

// NewBackendHandler 创建存储后端配置处理器实例
func NewBackendHandler(backendService service.BackendService) *BackendHandler {
	return &BackendHandler{
		backendService: backendService,
	}
}

// ListBackends 获取后端配置列表
// @Summary 获取后端配置列表
// @Tags 存储后端
// @Produce json
// @Success 200 {object} response.Response "后端配置列表"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /api/v1/backends [get]
func (h *BackendHandler) ListBackends(c *gin.Context) {
	backends, err := h.backendService.ListBackends()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, backends)
}

// GetBackend 获取后端配置详情
// @Summary 获取后端配置详情
// @Tags 存储后端
// @Produce json
// @Param id path int true "后端配置ID"
// @Success 200 {object} response.Response "后端配置"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Router /api/v1/backends/{id} [get]
func (h *BackendHandler) GetBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	backend, err := h.backendService.GetBackend(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, backend)
}

// CreateBackend 创建后端配置
// @Summary 创建后端配置
// @Tags 存储后端
// @Accept json
// @Produce json
// @Param backend body database.StorageBackend true "后端配置"
// @Success 201 {object} response.Response "创建完成的后端配置"
// @Failure 400 {object} response.Response "配置参数错误"
// @Router /api/v1/backends [post]
func (h *BackendHandler) CreateBackend(c *gin.Context) {
	var backend database.StorageBackend
	if err := c.ShouldBindJSON(&backend); err != nil {
		response.BadRequest(c, "请求体格式错误: "+err.Error())
		return
	}

	created, err := h.backendService.CreateBackend(&backend)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateBackend 更新后端配置
// @Summary 更新后端配置
// @Tags 存储后端
// @Accept json
// @Produce json
// @Param id path int true "后端配置ID"
// @Param backend body database.StorageBackend true "后端配置"
// @Success 201 {object} response.Response "更新后的后端配置"
// @Failure 400 {object} response.Response "配置参数错误"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Router /api/v1/backends/{id} [put]
func (h *BackendHandler) UpdateBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	var backend database.StorageBackend
	if err := c.ShouldBindJSON(&backend); err != nil {
		response.BadRequest(c, "请求体格式错误: "+err.Error())
		return
	}
	backend.ID = id

	updated, err := h.backendService.UpdateBackend(&backend)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, updated)
}

// DeleteBackend 删除后端配置
// @Summary 删除后端配置
// @Tags 存储后端
// @Produce json
// @Param id path int true "后端配置ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 400 {object} response.Response "激活中的配置不可删除"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Router /api/v1/backends/{id} [delete]
func (h *BackendHandler) DeleteBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	if err := h.backendService.DeleteBackend(id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "后端配置删除成功", nil)
}

// ActivateBackend 激活后端配置
// @Summary 激活后端配置
// @Description 激活前先执行连接测试，激活后文件流量切换到该后端
// @Tags 存储后端
// @Produce json
// @Param id path int true "后端配置ID"
// @Success 200 {object} response.Response "激活后的后端配置"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Failure 500 {object} response.Response "连接测试失败"
// @Router /api/v1/backends/{id}/activate [post]
func (h *BackendHandler) ActivateBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	backend, err := h.backendService.ActivateBackend(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "后端激活成功", backend)
}

// DeactivateBackend 取消激活后端配置
// @Summary 取消激活后端配置
// @Tags 存储后端
// @Produce json
// @Param id path int true "后端配置ID"
// @Success 200 {object} response.Response "取消激活成功"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Router /api/v1/backends/{id}/deactivate [post]
func (h *BackendHandler) DeactivateBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	if err := h.backendService.DeactivateBackend(id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "后端已取消激活", nil)
}

// TestBackend 测试后端连通性
// @Summary 测试后端连通性
// @Tags 存储后端
// @Produce json
// @Param id path int true "后端配置ID"
// @Success 200 {object} response.Response "连接测试通过"
// @Failure 404 {object} response.Response "后端配置不存在"
// @Failure 500 {object} response.Response "连接测试失败"
// @Router /api/v1/backends/{id}/test [post]
func (h *BackendHandler) TestBackend(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "后端配置ID无效")
		return
	}

	if err := h.backendService.TestBackend(id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "连接测试通过", nil)
}

// GetActiveBackend 获取当前激活的后端配置
// @Summary 获取当前激活的后端配置
// @Tags 存储后端
// @Produce json
// @Success 200 {object} response.Response "当前激活的后端配置，无激活配置时为空"
// @Router /api/v1/backends/active [get]
func (h *BackendHandler) GetActiveBackend(c *gin.Context) {
	backend, err := h.backendService.ActiveBackend()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, backend)
}
