package main

import (
	"flag"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/RentaDrive/RentaDrive/internal/booking"
	"github.com/RentaDrive/RentaDrive/internal/common/config"
	"github.com/RentaDrive/RentaDrive/internal/common/db"
	"github.com/RentaDrive/RentaDrive/internal/common/logger"
	"github.com/RentaDrive/RentaDrive/internal/common/server"
	"github.com/RentaDrive/RentaDrive/internal/common/tracing"
	"github.com/RentaDrive/RentaDrive/internal/document"
	"github.com/RentaDrive/RentaDrive/internal/fleet"
	"github.com/RentaDrive/RentaDrive/internal/stats"
	"github.com/RentaDrive/RentaDrive/internal/tracking"
	"github.com/RentaDrive/RentaDrive/internal/user"
)

var (
	configPath = flag.String("config", "configs/rental-service.json", "配置文件路径")
	consulHost = flag.String("consul-host", "", "从 Consul KV 拉取配置时的 Consul 地址")
	consulPort = flag.Int("consul-port", 8500, "Consul 端口")
	consulKey  = flag.String("consul-key", "", "Consul KV 中的配置 key；非空时优先于 -config")
)

func main() {
	flag.Parse()

	// 加载配置：优先 Consul KV，其次本地文件
	var (
		cfg *config.Config
		err error
	)
	if *consulKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Backend, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&fleet.Car{},
		&fleet.CarFeature{},
		&booking.Booking{},
		&document.Document{},
		&tracking.Sample{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 组装各领域模块
	userSvc := user.NewService(user.NewRepo(gormDB), cfg.Auth)
	bookingRepo := booking.NewRepo(gormDB)
	bookingSvc := booking.NewService(bookingRepo)
	// 维保守卫需要查询订单占用情况，由 booking 仓储提供
	fleetSvc := fleet.NewService(fleet.NewRepo(gormDB), bookingRepo)
	trackingSvc := tracking.NewService(tracking.NewRepo(gormDB))
	documentSvc := document.NewService(document.NewRepo(gormDB))
	statsSvc := stats.NewService(gormDB)

	handlers := []interface{ Register(*gin.Engine) }{
		user.NewHandler(userSvc),
		fleet.NewHandler(fleetSvc),
		booking.NewHandler(bookingSvc),
		tracking.NewHandler(trackingSvc, cfg.Tracking),
		document.NewHandler(documentSvc),
		stats.NewHandler(statsSvc),
	}

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		for _, h := range handlers {
			h.Register(r)
		}
		return nil
	}); err != nil {
		log.Fatalf("rental-service exited with error: %v", err)
	}
}
