// Package service 存储后端管理服务的单元测试
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/errors"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"gorm.io/gorm"
)

// setupBackendService 设置后端管理服务
func setupBackendService(t *testing.T) (BackendService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewBackendService(db, &storage.Factory{})
	return svc, db
}

// localBackend 构造一个指向临时目录的本地后端配置
func localBackend(t *testing.T, name string) *database.StorageBackend {
	return &database.StorageBackend{
		Name:      name,
		Provider:  storage.ProviderLocal,
		BasePath:  t.TempDir(),
		IsEnabled: true,
	}
}

// TestBackendCRUD 测试后端配置的增删改查
func TestBackendCRUD(t *testing.T) {
	svc, _ := setupBackendService(t)

	t.Run("创建并查询后端配置", func(t *testing.T) {
		created, err := svc.CreateBackend(localBackend(t, "本地盘"))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.IsActive)

		got, err := svc.GetBackend(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "本地盘", got.Name)
	})

	t.Run("不支持的提供商被拒绝", func(t *testing.T) {
		_, err := svc.CreateBackend(&database.StorageBackend{
			Name:     "bad",
			Provider: "ftp",
		})
		require.Error(t, err)

		appErr, ok := errors.GetAppError(err)
		require.True(t, ok)
		assert.True(t, appErr.IsValidation())
	})

	t.Run("云端后端缺少凭证被拒绝", func(t *testing.T) {
		_, err := svc.CreateBackend(&database.StorageBackend{
			Name:     "incomplete",
			Provider: storage.ProviderAliyun,
			Bucket:   "some-bucket",
		})
		require.Error(t, err)
	})

	t.Run("查询不存在的配置返回未找到", func(t *testing.T) {
		_, err := svc.GetBackend(99999)
		require.Error(t, err)

		appErr, ok := errors.GetAppError(err)
		require.True(t, ok)
		assert.True(t, appErr.IsNotFound())
	})

	t.Run("更新不改变激活状态", func(t *testing.T) {
		created, err := svc.CreateBackend(localBackend(t, "改名前"))
		require.NoError(t, err)

		created.Name = "改名后"
		created.IsActive = true // 试图通过更新接口抢激活
		updated, err := svc.UpdateBackend(created)
		require.NoError(t, err)
		assert.Equal(t, "改名后", updated.Name)
		assert.False(t, updated.IsActive)
	})
}

// TestBackendActivation 测试后端激活切换
func TestBackendActivation(t *testing.T) {
	svc, _ := setupBackendService(t)

	first, err := svc.CreateBackend(localBackend(t, "后端A"))
	require.NoError(t, err)
	second, err := svc.CreateBackend(localBackend(t, "后端B"))
	require.NoError(t, err)

	t.Run("激活后成为当前后端", func(t *testing.T) {
		activated, err := svc.ActivateBackend(first.ID)
		require.NoError(t, err)
		assert.True(t, activated.IsActive)

		active, err := svc.ActiveBackend()
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, first.ID, active.ID)
	})

	t.Run("同一时刻最多一个激活后端", func(t *testing.T) {
		_, err := svc.ActivateBackend(second.ID)
		require.NoError(t, err)

		backends, err := svc.ListBackends()
		require.NoError(t, err)

		activeCount := 0
		for _, b := range backends {
			if b.IsActive {
				activeCount++
			}
		}
		assert.Equal(t, 1, activeCount)

		active, err := svc.ActiveBackend()
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, second.ID, active.ID)
	})

	t.Run("激活中的配置不可删除", func(t *testing.T) {
		err := svc.DeleteBackend(second.ID)
		require.Error(t, err)

		appErr, ok := errors.GetAppError(err)
		require.True(t, ok)
		assert.True(t, appErr.IsValidation())
	})

	t.Run("取消激活后回到无激活状态", func(t *testing.T) {
		require.NoError(t, svc.DeactivateBackend(second.ID))

		active, err := svc.ActiveBackend()
		require.NoError(t, err)
		assert.Nil(t, active)

		// 取消激活后即可删除
		require.NoError(t, svc.DeleteBackend(second.ID))
	})

	t.Run("禁用的配置不可激活", func(t *testing.T) {
		created, err := svc.CreateBackend(localBackend(t, "禁用后端"))
		require.NoError(t, err)

		created.IsEnabled = false
		_, err = svc.UpdateBackend(created)
		require.NoError(t, err)

		_, err = svc.ActivateBackend(created.ID)
		require.Error(t, err)
	})
}

// TestBackendConnectionTest 测试后端连接测试
func TestBackendConnectionTest(t *testing.T) {
	svc, _ := setupBackendService(t)

	t.Run("本地后端连接测试通过", func(t *testing.T) {
		created, err := svc.CreateBackend(localBackend(t, "可用后端"))
		require.NoError(t, err)
		require.NoError(t, svc.TestBackend(created.ID))
	})

	t.Run("目录不可用时连接测试失败", func(t *testing.T) {
		created, err := svc.CreateBackend(&database.StorageBackend{
			Name:      "坏目录",
			Provider:  storage.ProviderLocal,
			BasePath:  "/proc/no-such-dir/blobs",
			IsEnabled: true,
		})
		require.NoError(t, err)

		err = svc.TestBackend(created.ID)
		require.Error(t, err)
	})
}
