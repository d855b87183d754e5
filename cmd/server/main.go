package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Oskru/study-smart/config"
	"github.com/Oskru/study-smart/internal/api/handler"
	"github.com/Oskru/study-smart/internal/api/middleware"
	"github.com/Oskru/study-smart/internal/api/router"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/internal/service"
	"github.com/Oskru/study-smart/pkg/database"
	"github.com/Oskru/study-smart/pkg/jwt"
	applogger "github.com/Oskru/study-smart/pkg/logger"
	"github.com/Oskru/study-smart/pkg/messaging"
	"github.com/Oskru/study-smart/pkg/redis"
)

func main() {
	// 1. 加载配置（STUDY_CONFIG 可指定配置文件路径）
	cfg, err := config.Load(os.Getenv("STUDY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 网格目录（Validate 已确认可构建）
	catalog, err := cfg.Catalog.Build()
	if err != nil {
		logger.Fatal("网格目录无效", zap.Error(err))
	}

	// 4. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：失败时降级为进程内会话，跳过黑名单与限流）
	deps := service.Deps{
		Config:  cfg,
		Repo:    repository.NewRepository(db),
		JWT:     jwt.NewManager(&cfg.Auth),
		Catalog: catalog,
		Logger:  logger,
	}
	routes := router.Deps{Config: cfg, JWT: deps.JWT, Logger: logger}

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级运行：会话仅存于进程内，Token 黑名单与限流不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Tokens = rdb
		deps.Sessions = rdb
		routes.Tokens = rdb
		routes.Limiter = rdb
	}

	// 6. 领域事件发布（未启用时为空实现）
	publisher, err := messaging.NewPublisher(&cfg.Messaging, logger)
	if err != nil {
		logger.Warn("RabbitMQ 连接失败，领域事件将被丢弃", zap.Error(err))
		publisher = messaging.NopPublisher{}
	}
	deps.Publisher = publisher

	// 7. 依赖注入: Repository → Service → Handler → Router
	svc := service.NewService(deps)
	routes.Handler = handler.NewHandler(svc, catalog)
	engine := router.Setup(routes)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		logger.Warn("关闭事件发布器失败", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// 编译期确认 Redis 客户端满足中间件与 Service 所需接口
var (
	_ middleware.TokenChecker = (*redis.Client)(nil)
	_ middleware.RateLimiter  = (*redis.Client)(nil)
	_ service.TokenStore      = (*redis.Client)(nil)
	_ service.SessionStore    = (*redis.Client)(nil)
)
