package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadp "fivebells/internal/adapter/http"
	mw "fivebells/internal/adapter/middleware"
	"fivebells/internal/adapter/repository/mysql"
	"fivebells/internal/infrastructure/cache"
	"fivebells/internal/infrastructure/db"
	"fivebells/internal/infrastructure/lock"
	"fivebells/internal/infrastructure/mq"
	"fivebells/internal/job"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and background jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := a.populate(ctx); err != nil {
		return err
	}

	var mws []echo.MiddlewareFunc
	checks := []httpadp.Check{{Name: "database", Ping: db.Check(a.db)}}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, running without idempotency and world locks", zap.Error(err))
	} else {
		defer rdb.Close()
		checks = append(checks, httpadp.Check{Name: "redis", Ping: cache.Check(rdb)})
		a.worlds.WithLocker(lock.NewWorldLocker(rdb, time.Duration(cfg.WorldLockTTLSecs)*time.Second))
		mws = append(mws, mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, logger))
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := mq.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		pub := mq.NewPublisher(producer, cfg.KafkaTopic)
		defer pub.Close()
		sender := job.NewOutboxSender(mysql.NewOutboxRepository(a.db), pub, 0, cfg.OutboxRetries, logger)
		done := make(chan struct{})
		go func() {
			defer close(done)
			sender.Start(ctx)
		}()
		// runs before pub.Close and a.close
		defer func() {
			cancel()
			<-done
		}()
	}

	if cfg.AutoEvaluateSpec != "" {
		auto := job.NewAutoEvaluate(a.worlds, cfg.AutoEvaluateSpec, logger)
		if err := auto.Start(ctx); err != nil {
			return err
		}
		// a running evaluation finishes its tick before the db closes
		defer auto.Stop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	httpadp.Routes(e,
		httpadp.NewHandler(checks...),
		httpadp.NewWorldHandler(a.worlds),
		httpadp.NewBankHandler(a.bank),
		httpadp.NewLoanHandler(a.loans),
		mws...,
	)

	go func() {
		addr := ":" + cfg.AppPort
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return e.Shutdown(shutdownCtx)
}
