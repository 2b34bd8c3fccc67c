package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	checkreceipt "stockreceipter/frontend/receipts/checkReceipt"
	importreceipt "stockreceipter/frontend/receipts/importReceipt"
	"stockreceipter/infrastructure/audit"
	"stockreceipter/infrastructure/cache"
	"stockreceipter/infrastructure/config"
	httpserver "stockreceipter/infrastructure/http"
	"stockreceipter/infrastructure/ledger"
	"stockreceipter/infrastructure/logger"
	"stockreceipter/infrastructure/metrics"
	"stockreceipter/infrastructure/notify"
	"stockreceipter/infrastructure/rbac"
	"stockreceipter/infrastructure/scanlock"
	"stockreceipter/infrastructure/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	db, err := sqlite.Open(cfg.SQLitePath, sqlite.Options{ReadPoolSize: cfg.ReadPoolSize})
	if err != nil {
		log.Error("open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrationsDir != "" {
		err = sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir)
	} else {
		err = sqlite.ApplyEmbeddedMigrations(ctx, db)
	}
	if err != nil {
		log.Error("apply migrations", slog.Any("err", err))
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	var (
		notifier notify.Notifier = notify.NewLogNotifier(log)
		locker   scanlock.Locker = scanlock.Noop{}
	)
	rdb, err := notify.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", slog.Any("err", err))
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		notifier = notify.NewRedisNotifier(rdb, cfg.NotifyQueue)
		locker = scanlock.NewRedisLocker(rdb, cfg.ScanLockTTL)
		log.Info("redis enabled", slog.String("queue", cfg.NotifyQueue))
	}

	auditSvc := audit.NewService()
	l := ledger.New(m)
	imports := importreceipt.NewService(importreceipt.Deps{
		DB:       db,
		Audit:    auditSvc,
		Ledger:   l,
		Notifier: notifier,
		Locker:   locker,
		Metrics:  m,
		Log:      log,
	})
	checks := checkreceipt.NewService(db, auditSvc, l, m, log)

	rbacCache := cache.NewRbacRolesCache()
	server := httpserver.NewServer(cfg.Addr, httpserver.Deps{
		DB:      db,
		Rbac:    rbac.New(rbacCache),
		Audit:   auditSvc,
		Imports: imports,
		Checks:  checks,
		Metrics: m,
		Log:     log,
	})
	if cfg.ShutdownTimeout > 0 {
		httpserver.ShutdownTimeout = cfg.ShutdownTimeout
	}
	if err := server.Start(); err != nil {
		log.Error("start server", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("receipter listening",
		slog.String("addr", cfg.Addr),
		slog.Int("resources", len(rbacCache.RouteNamesSorted())))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		log.Error("graceful shutdown", slog.Any("err", err))
	}
}
