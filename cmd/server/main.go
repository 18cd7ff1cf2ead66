package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/api"
	cfgpkg "github.com/openbroadcast/tally-server/internal/config"
	"github.com/openbroadcast/tally-server/internal/health"
	"github.com/openbroadcast/tally-server/internal/httpserver"
	"github.com/openbroadcast/tally-server/internal/logging"
	"github.com/openbroadcast/tally-server/internal/metrics"
	"github.com/openbroadcast/tally-server/internal/outbound"
	"github.com/openbroadcast/tally-server/internal/storage/gormrepo"
	redisstorage "github.com/openbroadcast/tally-server/internal/storage/redis"
	"github.com/openbroadcast/tally-server/internal/tally"
	"github.com/openbroadcast/tally-server/internal/udpserver"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认 configs/example.yaml 或 TALLY_CONFIG）")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// 4) tally 状态注册表与健康聚合器
	registry := tally.NewRegistry()
	aggregator := health.NewAggregator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5) 事件存储（可选）
	var (
		repo   *gormrepo.Repository
		writer *gormrepo.Writer
	)
	if cfg.Database.Enabled {
		repo, err = gormrepo.Open(cfg.Database)
		if err != nil {
			log.Fatal("db connect error", zap.Error(err))
		}
		defer func() { _ = repo.Close() }()

		writer = gormrepo.NewWriter(repo, 256,
			func() { appMetrics.SinkErrors.WithLabelValues("db").Inc() }, log)
		writer.Start(ctx)
		registry.AddSink(writer.Sink())
		aggregator.AddChecker(health.NewDatabaseChecker(repo))
		log.Info("event store enabled")
	}

	// 6) Redis 状态镜像（可选）
	if cfg.Redis.Enabled {
		redisClient, err := redisstorage.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal("redis connect error", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		mirror := redisstorage.NewMirror(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.Channel,
			func() { appMetrics.SinkErrors.WithLabelValues("redis").Inc() }, log)
		registry.AddSink(mirror.Sink())
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
		log.Info("redis mirror enabled",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("channel", cfg.Redis.Channel))
	}

	// 7) 下行发送器（可选，API 的 /api/send 依赖）
	var sender *outbound.Sender
	if cfg.Sender.Enabled {
		sender, err = outbound.NewSender(cfg.Sender.Dest, cfg.Sender.RatePerSec, cfg.Sender.Burst, appMetrics, log)
		if err != nil {
			log.Fatal("sender init error", zap.Error(err))
		}
		defer func() { _ = sender.Close() }()
	}

	// 8) UDP 网关
	udpSrv := udpserver.New(cfg.UDP, registry, appMetrics, log)
	aggregator.AddChecker(health.NewUDPChecker(udpSrv))

	// 9) HTTP 服务与 API 路由
	var httpMetricsHandler = metricsHandler
	if !cfg.Metrics.Enable {
		httpMetricsHandler = nil
	}
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, httpMetricsHandler)
	api.RegisterRoutes(httpSrv.Engine(), registry, sender, repo, log)
	health.RegisterHTTPRoutes(httpSrv.Engine(), aggregator)

	// 并行启动
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	if err := udpSrv.Start(); err != nil {
		log.Fatal("udp server start error", zap.Error(err))
	}
	log.Info("tally-server started",
		zap.String("udp", cfg.UDP.Addr),
		zap.String("http", cfg.HTTP.Addr))

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = udpSrv.Shutdown(shutdownCtx)
	cancel()
	// 等待写入器排空队列，再由 defer 关闭存储连接
	if writer != nil {
		writer.Wait()
	}
}
