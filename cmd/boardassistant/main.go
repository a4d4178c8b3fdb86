package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matcapl/portco-board-assistant/internal/checklist"
	"github.com/matcapl/portco-board-assistant/internal/config"
	"github.com/matcapl/portco-board-assistant/internal/logger"
	"github.com/matcapl/portco-board-assistant/internal/server"
)

var (
	port          = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode       = flag.Bool("dev", false, "开发模式")
	dataDir       = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	checklistPath = flag.String("checklist", "", "检查清单 JSON 路径 (覆盖配置文件)")
	writeConfig   = flag.String("write-config", "", "将生效配置写入指定 config.toml 后退出")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
		cfg.Log.Format = "console"
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *checklistPath != "" {
		cfg.Checklist.Path = *checklistPath
	}

	if *writeConfig != "" {
		if err := writeEffectiveConfig(cfg, *writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "写入配置失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("配置已写入 %s\n", *writeConfig)
		return
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// 检查清单格式错误直接退出
	cl, err := checklist.Load(cfg.Checklist.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Checklist.Path).Msg("failed to load checklist")
	}
	log.Info().
		Str("version", cl.Version).
		Int("metrics", len(cl.Metrics)).
		Msg("checklist loaded")

	srv, err := server.NewServer(cfg, cl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	go func() {
		log.Info().Str("addr", addr).Bool("dev", cfg.Server.DevMode).Msg("server listening")
		if err := srv.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// writeEffectiveConfig 保存合并了文件、环境变量与命令行参数之后的配置
func writeEffectiveConfig(cfg *config.AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return config.SaveConfig(cfg, path)
}
