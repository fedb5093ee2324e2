package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/draw-and-guess/internal/config"
	"github.com/palemoky/draw-and-guess/internal/logger"
	"github.com/palemoky/draw-and-guess/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	envFile := flag.String("env", ".env", "环境变量文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	envErr := cfg.ApplyEnv(*envFile)

	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info().Str("path", *configPath).Msg("📄 未找到配置文件，使用默认配置")
		} else {
			log.Warn().Err(err).Str("path", *configPath).Msg("⚠️ 加载配置文件失败，使用默认配置")
		}
	}
	if envErr != nil {
		log.Fatal().Err(envErr).Msg("❌ 读取环境变量失败")
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ 创建服务器失败")
	}

	// 优雅关闭：第一次信号等待进行中的游戏，第二次立即退出
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("🛑 正在关闭服务器...")
		go func() {
			<-quit
			log.Warn().Msg("⚠️ 强制退出")
			srv.Shutdown()
			os.Exit(1)
		}()
		srv.GracefulShutdown(cfg.Server.ShutdownTimeoutDuration())
	}()

	// 启动服务器
	log.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("🎨 你画我猜服务器启动中...")
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("❌ 服务器启动失败")
	}
	log.Info().Msg("👋 服务器已关闭")
}
