// @title File Catalog API
// @version 1.0
// @description 文件资产生命周期管理服务，元数据目录与Blob存储协同
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
package main

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/weiwangfds/filecatalog/config"
	"github.com/weiwangfds/filecatalog/internal/catalog"
	"github.com/weiwangfds/filecatalog/internal/database"
	"github.com/weiwangfds/filecatalog/internal/logger"
	"github.com/weiwangfds/filecatalog/internal/middleware"
	"github.com/weiwangfds/filecatalog/internal/router"
	"github.com/weiwangfds/filecatalog/internal/service"
	"github.com/weiwangfds/filecatalog/internal/storage"
	"golang.org/x/net/http2"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志系统
	if err := logger.Init(&logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化本地Blob存储，作为未激活云端后端时的默认存储
	localStore, err := storage.NewLocalStore(cfg.Storage.LocalPath)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	// 初始化服务
	factory := &storage.Factory{}
	backendService := service.NewBackendService(db, factory)
	store := storage.NewSwitchingStore(backendService, factory, localStore)

	retryInterval := time.Duration(cfg.Cleanup.RetryIntervalSec) * time.Second
	recorder := service.NewCleanupRecorder(db, store, retryInterval)
	fileService := service.NewFileService(catalog.New(db), store, recorder)

	cleanupService := service.NewCleanupService(db, store,
		cfg.Cleanup.MaxRetries,
		retryInterval,
		time.Duration(cfg.Cleanup.ScanIntervalSec)*time.Second)

	// 初始化中间件和路由
	loggerMiddleware := middleware.NewLoggerMiddleware()
	r := router.NewRouter(loggerMiddleware, db, fileService, backendService)

	// 启动后台清理服务
	cleanupService.Start()

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      r.GetEngine(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	if cfg.Server.EnableHTTPS {
		srv.TLSConfig = &tls.Config{
			NextProtos: []string{"h2", "http/1.1"}, // 支持HTTP/2和HTTP/1.1
		}

		// 如果启用HTTP/2，配置HTTP/2支持
		if cfg.Server.EnableHTTP2 {
			if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
				log.Fatalf("配置HTTP/2失败: %v", err)
			}
		}
	}

	// 启动服务器
	go func() {
		var err error
		if cfg.Server.EnableHTTPS {
			log.Printf("HTTPS服务器启动在端口 %d (HTTP/2: %v)", cfg.Server.Port, cfg.Server.EnableHTTP2)
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			log.Printf("HTTP服务器启动在端口 %d", cfg.Server.Port)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务器...")

	// 停止后台清理服务
	cleanupService.Stop()

	// 优雅关闭服务器
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务器强制关闭:", err)
	}

	log.Println("服务器已退出")
}
