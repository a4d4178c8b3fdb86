package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	v1 "github.com/matcapl/portco-board-assistant/internal/api/v1"
	"github.com/matcapl/portco-board-assistant/internal/config"
	"github.com/matcapl/portco-board-assistant/internal/logger"
	"github.com/matcapl/portco-board-assistant/internal/model"
	"github.com/matcapl/portco-board-assistant/internal/store"
)

// Version 服务版本
const Version = "0.3.0"

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
	http   *http.Server
}

// NewServer 创建服务器；checklist 必须已通过校验
func NewServer(cfg *config.AppConfig, checklist *model.Checklist) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}

	tempDir := config.UploadTempDir(cfg)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}

	// 初始化 SQLite 审计日志
	var auditStore *store.Store
	if cfg.Data.AuditLog {
		auditStore, err = store.New(filepath.Join(dataDir, "audit.db"))
		if err != nil {
			return nil, err
		}
	}

	s := &Server{
		router: gin.New(),
		store:  auditStore,
		v1: v1.NewHandler(checklist, auditStore, v1.Options{
			Upload:  cfg.Upload,
			TempDir: tempDir,
			Version: Version,
		}),
	}

	s.router.Use(gin.Recovery())
	if devMode {
		s.router.Use(gin.Logger())
	} else {
		s.router.Use(logger.GinMiddleware())
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler 返回 http.Handler（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，直到 Shutdown 被调用
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭并释放存储
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	if s.store != nil {
		if cerr := s.store.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close audit store")
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
