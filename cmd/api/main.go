// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/task-ledger/internal/auth"
	"github.com/yourusername/task-ledger/internal/config"
	"github.com/yourusername/task-ledger/internal/server"
	"github.com/yourusername/task-ledger/internal/store"
	"github.com/yourusername/task-ledger/internal/tasks"
	"github.com/yourusername/task-ledger/internal/users"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	// 設定の読み込み（コマンドライン引数は検証前に反映する）
	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	router, err := buildRouter(cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting API server on %s (mode: %s)", srv.Addr, cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

// loadConfig は環境変数とコマンドライン引数から設定を組み立てます。
func loadConfig(opts *Options) (*config.Config, error) {
	return config.Load(opts.EnvFile, func(cfg *config.Config) {
		applyOptions(cfg, opts)
	})
}

// applyOptions はコマンドライン引数で設定を上書きします。
func applyOptions(cfg *config.Config, opts *Options) {
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Mode != "" {
		cfg.GinMode = opts.Mode
	}
}

// buildRouter はストアとサービスを組み立ててルーターを返します。
func buildRouter(cfg *config.Config, logger *log.Logger) (*gin.Engine, error) {
	st := store.New()
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte(cfg.TokenSecret),
	})

	directory, err := users.NewDirectory(st, auth.NewVault(cfg.BcryptCost), tokens, logger)
	if err != nil {
		return nil, err
	}
	ledger, err := tasks.NewLedger(st, logger)
	if err != nil {
		return nil, err
	}

	return server.NewRouter(server.Deps{
		Store:          st,
		Users:          directory,
		Tasks:          ledger,
		Gate:           auth.NewGate(tokens),
		AllowedOrigins: server.SplitOrigins(cfg.CORSAllowedOrigins),
	})
}
