// Package storage 本地磁盘Blob存储的单元测试
package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/filecatalog/internal/database"
)

// TestLocalStorePutGet 测试写入和读取
func TestLocalStorePutGet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	t.Run("写入后读回相同内容", func(t *testing.T) {
		path, err := store.Put("blob-1", strings.NewReader("payload"))
		require.NoError(t, err)
		assert.NotEmpty(t, path)

		body, err := store.Get("blob-1")
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("覆盖写入替换内容", func(t *testing.T) {
		_, err := store.Put("blob-2", strings.NewReader("old"))
		require.NoError(t, err)
		_, err = store.Put("blob-2", strings.NewReader("new"))
		require.NoError(t, err)

		body, err := store.Get("blob-2")
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("读取不存在的键返回错误", func(t *testing.T) {
		_, err := store.Get("no-such-blob")
		require.Error(t, err)
	})
}

// TestLocalStoreDelete 测试删除
func TestLocalStoreDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	t.Run("删除已有Blob返回true", func(t *testing.T) {
		_, err := store.Put("victim", strings.NewReader("x"))
		require.NoError(t, err)

		deleted, err := store.Delete("victim")
		require.NoError(t, err)
		assert.True(t, deleted)

		exists, err := store.Exists("victim")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("删除不存在的Blob返回false且无错误", func(t *testing.T) {
		deleted, err := store.Delete("ghost")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

// TestLocalStoreKeyValidation 测试存储键校验
func TestLocalStoreKeyValidation(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	badKeys := []string{"", "a/b", `a\b`, "../escape", "a..b"}
	for _, key := range badKeys {
		_, err := store.Put(key, strings.NewReader("x"))
		assert.Error(t, err, "key %q should be rejected", key)

		_, err = store.Get(key)
		assert.Error(t, err, "key %q should be rejected", key)
	}
}

// TestLocalStoreTestConnection 测试连通性检查
func TestLocalStoreTestConnection(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.TestConnection())
}

// TestSwitchingStoreFallback 测试无激活后端时回退到本地存储
func TestSwitchingStoreFallback(t *testing.T) {
	fallback, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	store := NewSwitchingStore(emptySource{}, &Factory{}, fallback)

	_, err = store.Put("via-switch", strings.NewReader("routed"))
	require.NoError(t, err)

	// 内容实际落在回退的本地存储中
	exists, err := fallback.Exists("via-switch")
	require.NoError(t, err)
	assert.True(t, exists)

	body, err := store.Get("via-switch")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "routed", string(data))
}

// emptySource 永远没有激活后端的来源
type emptySource struct{}

func (emptySource) ActiveBackend() (*database.StorageBackend, error) {
	return nil, nil
}
