package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/chess-arena/internal/arena"
	appcfg "github.com/kapu/chess-arena/internal/config"
	"github.com/kapu/chess-arena/internal/identity"
	"github.com/kapu/chess-arena/internal/match"
	"github.com/kapu/chess-arena/internal/msgcat"
	"github.com/kapu/chess-arena/internal/notify"
	"github.com/kapu/chess-arena/internal/obslog"
	"github.com/kapu/chess-arena/internal/rules"
	"github.com/kapu/chess-arena/internal/transport/httpapi"
	"github.com/kapu/chess-arena/internal/transport/wsgateway"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		obslog.L().Fatal("redis url parse", zap.Error(err))
	}
	rdb := redis.NewClient(opts)
	pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pctx).Err(); err != nil {
		pcancel()
		obslog.L().Fatal("redis ping", zap.Error(err))
	}
	pcancel()

	games := match.NewRedisStore(rdb, cfg.GameTTL)

	var ids identity.Store
	if cfg.DatabaseURL != "" {
		ids, err = identity.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("identity store init", zap.Error(err))
		}
	} else {
		obslog.L().Warn("DATABASE_URL not set, using in-memory identity store")
		ids = identity.NewMemoryStore()
	}

	cat, err := msgcat.New()
	if err != nil {
		obslog.L().Fatal("message catalog init", zap.Error(err))
	}

	hub := notify.NewHub(arena.NewGameSource(games))

	reg := arena.NewRegistry(ids, games, rules.NewChessEngine(), hub, cat, arena.Options{
		RatingBand: cfg.RatingBand,
		EloK:       cfg.EloK,
	})

	var arch *match.Archive
	if cfg.DatabaseURL != "" {
		arch, err = match.NewArchive(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("archive init", zap.Error(err))
		}
		reg.AttachArchive(arch)
	}

	api := httpapi.NewServer(reg)
	gw := wsgateway.New(hub)

	errCh := make(chan error, 2)
	go func() {
		if err := api.ListenAndServe(cfg.ListenAddr); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := gw.ListenAndServe(cfg.WSAddr); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		obslog.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		obslog.L().Error("listener failed", zap.Error(err))
	}

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	_ = api.Shutdown()
	_ = gw.Shutdown(sctx)
	if arch != nil {
		_ = arch.Close()
	}
	_ = rdb.Close()
}
