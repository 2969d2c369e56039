// Package handler 存储后端接口的HTTP层测试
package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/filecatalog/internal/database"
)

// createBackend 通过POST接口创建后端配置并返回ID
func createBackend(t *testing.T, engine *gin.Engine, backend map[string]interface{}) uint {
	payload, err := json.Marshal(backend)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backends", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data database.StorageBackend `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.ID)
	return resp.Data.ID
}

// TestBackendEndpoints 测试存储后端接口
func TestBackendEndpoints(t *testing.T) {
	engine := setupRouter(t)

	t.Run("创建本地后端返回201", func(t *testing.T) {
		id := createBackend(t, engine, map[string]interface{}{
			"name":      "本地后端",
			"provider":  "local",
			"base_path": t.TempDir(),
		})
		assert.NotZero(t, id)
	})

	t.Run("非法提供商返回400", func(t *testing.T) {
		payload := []byte(`{"name":"bad","provider":"ftp"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backends", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("查询不存在的配置返回404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/backends/99999", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("激活并查询当前后端", func(t *testing.T) {
		id := createBackend(t, engine, map[string]interface{}{
			"name":      "待激活后端",
			"provider":  "local",
			"base_path": t.TempDir(),
		})

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/backends/%d/activate", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		req = httptest.NewRequest(http.MethodGet, "/api/v1/backends/active", nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data database.StorageBackend `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.Data.ID)
	})

	t.Run("连接测试通过返回200", func(t *testing.T) {
		id := createBackend(t, engine, map[string]interface{}{
			"name":      "测试后端",
			"provider":  "local",
			"base_path": t.TempDir(),
		})

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/backends/%d/test", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("删除未激活的配置返回200", func(t *testing.T) {
		id := createBackend(t, engine, map[string]interface{}{
			"name":      "可删除后端",
			"provider":  "local",
			"base_path": t.TempDir(),
		})

		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/backends/%d", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
