package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dhatukala/dhatukala/internal/auth"
	"github.com/dhatukala/dhatukala/internal/catalog"
	"github.com/dhatukala/dhatukala/internal/config"
	"github.com/dhatukala/dhatukala/internal/exports"
	"github.com/dhatukala/dhatukala/internal/module"
	"github.com/dhatukala/dhatukala/internal/parties"
	"github.com/dhatukala/dhatukala/internal/rates"
	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/store"
	"github.com/dhatukala/dhatukala/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Dhatukala server starting", zap.String("version", version.Short()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	st, err := store.New(cfg.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer st.Close()

	registry := module.NewRegistry(logger)

	// Auth issues sessions; every other module borrows its guards. The
	// catalog module doubles as the exports module's product source, so
	// it must initialize first.
	authModule := auth.New(st)
	catalogModule := catalog.New(st, catalog.Guard(authModule.RequireAuth))

	modules := []module.Module{
		authModule,
		catalogModule,
		parties.New(st, parties.Guard(authModule.RequireAuth)),
		rates.New(st, rates.Guard(authModule.RequireAuth)),
		exports.New(st, catalogModule, exports.Guard(authModule.RequireAuth)),
	}
	for _, m := range modules {
		if err := registry.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	if err := registry.InitAll(cfg); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	srv := server.New(addr, registry, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Dhatukala server ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	registry.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("Dhatukala server stopped")
}
