// Package handler 文件接口的HTTP层测试
// 通过完整路由验证状态码约定：读成功200、写成功201、未找到404
package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/filecatalog/internal/catalog"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/middleware"
	"github.com/weiwangfds/filecatalog/internal/router"
	"github.com/weiwangfds/filecatalog/internal/service"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter 组装完整的路由和真实依赖
func setupRouter(t *testing.T) *gin.Engine {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	factory := &storage.Factory{}
	backendService := service.NewBackendService(db, factory)
	recorder := service.NewCleanupRecorder(db, store, 0)
	fileService := service.NewFileService(catalog.New(db), store, recorder)

	r := router.NewRouter(middleware.NewLoggerMiddleware(), db, fileService, backendService)
	return r.GetEngine()
}

// multipartBody 构造包含file和fileInfo两部分的multipart请求体
func multipartBody(t *testing.T, content string, info map[string]interface{}) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	infoJSON, err := json.Marshal(info)
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("fileInfo", string(infoJSON)))

	part, err := writer.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// uploadFile 通过POST接口上传文件并返回分配的记录ID
func uploadFile(t *testing.T, engine *gin.Engine, content string, info map[string]interface{}) uint {
	body, contentType := multipartBody(t, content, info)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data database.FileRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotZero(t, resp.Data.ID)
	return resp.Data.ID
}

// TestFileEndpoints 测试文件接口的完整生命周期
func TestFileEndpoints(t *testing.T) {
	engine := setupRouter(t)

	t.Run("上传返回201和完整记录", func(t *testing.T) {
		body, contentType := multipartBody(t, "hello", map[string]interface{}{
			"name":    "greeting.txt",
			"version": 1,
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data database.FileRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotZero(t, resp.Data.ID)
		assert.Equal(t, "greeting.txt", resp.Data.Name)
		assert.NotEmpty(t, resp.Data.StoredFileName)
	})

	t.Run("缺少fileInfo返回400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewReader(nil))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("查询记录返回200", func(t *testing.T) {
		id := uploadFile(t, engine, "data", map[string]interface{}{"name": "query.txt"})

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/files/%d", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("查询不存在的记录返回404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files/99999", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("列表查询返回200", func(t *testing.T) {
		uploadFile(t, engine, "x", map[string]interface{}{"name": "listed.txt"})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/files?name=listed.txt", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "listed.txt")
	})

	t.Run("下载返回原始内容", func(t *testing.T) {
		id := uploadFile(t, engine, "binary-payload", map[string]interface{}{"name": "dl.bin"})

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/files/download/%d", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "binary-payload", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "dl.bin")
	})

	t.Run("下载不存在的记录返回404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files/download/99999", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("更新返回201且内容被替换", func(t *testing.T) {
		id := uploadFile(t, engine, "old-content", map[string]interface{}{"name": "mut.txt"})

		body, contentType := multipartBody(t, "new-content", map[string]interface{}{
			"id":   id,
			"name": "mut.txt",
		})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/files/download/%d", id), nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "new-content", w.Body.String())
	})

	t.Run("更新缺少ID返回400", func(t *testing.T) {
		body, contentType := multipartBody(t, "x", map[string]interface{}{"name": "noid.txt"})

		req := httptest.NewRequest(http.MethodPut, "/api/v1/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("更新不存在的记录返回404", func(t *testing.T) {
		body, contentType := multipartBody(t, "x", map[string]interface{}{
			"id":   99999,
			"name": "ghost.txt",
		})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/files", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("删除返回被删记录并在之后404", func(t *testing.T) {
		id := uploadFile(t, engine, "bye", map[string]interface{}{"name": "gone.txt"})

		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/files/%d", id), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "gone.txt")

		req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/files/%d", id), nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("非法ID返回400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files/not-a-number", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestHealthEndpoint 测试健康检查接口
func TestHealthEndpoint(t *testing.T) {
	engine := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
