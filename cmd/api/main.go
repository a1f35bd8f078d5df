package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"collateral-ledger/internal/adapter/events"
	httpadp "collateral-ledger/internal/adapter/http"
	"collateral-ledger/internal/adapter/kyc"
	mw "collateral-ledger/internal/adapter/middleware"
	"collateral-ledger/internal/adapter/oracle"
	"collateral-ledger/internal/adapter/repository/mysql"
	"collateral-ledger/internal/config"
	"collateral-ledger/internal/infrastructure/cache"
	"collateral-ledger/internal/infrastructure/db"
	"collateral-ledger/internal/infrastructure/logger"
	"collateral-ledger/internal/infrastructure/metrics"
	"collateral-ledger/internal/usecase/catalog"
	"collateral-ledger/internal/usecase/keeper"
	"collateral-ledger/internal/usecase/ledger"
	"collateral-ledger/internal/usecase/lifecycle"
)

type publisher interface {
	lifecycle.Publisher
	Close()
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var pub publisher = events.Fallback{Log: log}
	if cfg.AMQPURL != "" {
		p, err := events.NewProducer(cfg.AMQPURL, log)
		if err != nil {
			log.WithField("module", "events").Warn("broker unreachable, events disabled: " + err.Error())
		} else {
			pub = p
		}
	}
	defer pub.Close()

	m := metrics.New()
	prices := oracle.NewRedisOracle(rdb, cfg.PriceMaxAge)

	products := mysql.NewProductRepository(gdb)
	loans := mysql.NewLoanRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	writes := lifecycle.NewUsecase(tx, products, loans,
		lifecycle.WithOracle(prices),
		lifecycle.WithIdentityVerifier(kyc.NewRedisVerifier(rdb)),
		lifecycle.WithPublisher(pub),
		lifecycle.WithMetrics(m),
		lifecycle.WithLogger(log),
		lifecycle.WithTimeouts(cfg.OracleTimeout, cfg.KYCTimeout),
	)
	reads := ledger.NewUsecase(products, loans, mysql.NewLedgerRepository(gdb),
		ledger.WithOracle(prices, cfg.OracleTimeout))

	k := keeper.New(keeper.Config{
		Schedule:     cfg.LiquidationSchedule,
		LiquidatorID: cfg.KeeperLiquidatorID,
		LockTTL:      cfg.KeeperLockTTL,
	}, cache.NewLocker(rdb), reads, writes, m, log)
	if err := k.Start(); err != nil {
		log.Fatalf("keeper: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover(), mw.Metrics(m), mw.RateLimit(cfg.RateLimitRPS))

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "mysql", Ping: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		),
		Products: httpadp.NewProductHandler(catalog.NewUsecase(products, tx), reads),
		Loans:    httpadp.NewLoanHandler(writes, reads),
		Metrics:  echo.WrapHandler(m.Handler()),
		Mutating: []echo.MiddlewareFunc{mw.Idempotency(rdb, cfg.IdempotencyTTL(), log)},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdown(e, k, log)
}

func shutdown(e *echo.Echo, k *keeper.Keeper, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	select {
	case <-k.Stop().Done():
	case <-ctx.Done():
		log.Warn("keeper sweep still running at shutdown")
	}
}
