// Package router 配置HTTP路由
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/weiwangfds/filecatalog/internal/handler"
	"github.com/weiwangfds/filecatalog/internal/middleware"
	"github.com/weiwangfds/filecatalog/internal/service"
	"gorm.io/gorm"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
}

// NewRouter 创建路由实例
func NewRouter(loggerMiddleware *middleware.LoggerMiddleware, db *gorm.DB,
	fileService service.FileService, backendService service.BackendService) *Router {
	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 初始化处理器
	fileHandler := handler.NewFileHandler(fileService)
	backendHandler := handler.NewBackendHandler(backendService)

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware.Logger())
	engine.Use(loggerMiddleware.RequestLogger())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Swagger文档路由
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	// API路由组
	api := engine.Group("/api/v1")
	{
		// 基础信息接口
		api.GET("/info", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"service": "File Catalog",
				"version": "1.0.0",
				"status":  "running",
			})
		})

		// 数据库状态检查
		api.GET("/db/status", func(c *gin.Context) {
			sqlDB, err := db.DB()
			if err != nil {
				c.JSON(500, gin.H{
					"error": "Database connection error",
				})
				return
			}

			if err := sqlDB.Ping(); err != nil {
				c.JSON(500, gin.H{
					"error": "Database ping failed",
				})
				return
			}

			c.JSON(200, gin.H{
				"status": "Database connection OK",
			})
		})

		// 文件管理接口
		files := api.Group("/files")
		{
			files.GET("", fileHandler.ListFiles)
			files.POST("", fileHandler.AddFile)
			files.PUT("", fileHandler.UpdateFile)
			files.GET("/:id", fileHandler.GetFile)
			files.DELETE("/:id", fileHandler.RemoveFile)
			files.GET("/download/:fileId", fileHandler.DownloadFile)
		}

		// 存储后端管理接口
		backends := api.Group("/backends")
		{
			backends.GET("", backendHandler.ListBackends)
			backends.POST("", backendHandler.CreateBackend)
			backends.GET("/active", backendHandler.GetActiveBackend)
			backends.GET("/:id", backendHandler.GetBackend)
			backends.PUT("/:id", backendHandler.UpdateBackend)
			backends.DELETE("/:id", backendHandler.DeleteBackend)
			backends.POST("/:id/activate", backendHandler.ActivateBackend)
			backends.POST("/:id/deactivate", backendHandler.DeactivateBackend)
			backends.POST("/:id/test", backendHandler.TestBackend)
		}
	}

	return &Router{
		engine: engine,
		db:     db,
	}
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetDB 获取数据库连接
func (r *Router) GetDB() *gorm.DB {
	return r.db
}
