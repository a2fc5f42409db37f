// Package server はルーティング表とミドルウェアの配線を行います。
package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/task-ledger/internal/auth"
	"github.com/yourusername/task-ledger/internal/store"
	"github.com/yourusername/task-ledger/internal/tasks"
	"github.com/yourusername/task-ledger/internal/users"
)

// Deps はルーター構築に必要な依存です。
type Deps struct {
	Store          *store.Store
	Users          users.Service
	Tasks          tasks.Service
	Gate           *auth.Gate
	AllowedOrigins []string
}

// Route はメソッドとパスをハンドラーに対応付けます。
type Route struct {
	Method    string
	Path      string
	Protected bool
	Handler   gin.HandlerFunc
}

// Routes はアプリケーションのルーティング表を返します。
func Routes(deps Deps) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/health", Handler: healthHandler(deps.Store)},
		{Method: http.MethodPost, Path: "/user/signup", Handler: users.SignupHandler(deps.Users)},
		{Method: http.MethodPost, Path: "/user/signin", Handler: users.SigninHandler(deps.Users)},
		{Method: http.MethodPost, Path: "/authed/todo", Protected: true, Handler: tasks.CreateHandler(deps.Tasks)},
		{Method: http.MethodPut, Path: "/authed/todo/:id", Protected: true, Handler: tasks.UpdateHandler(deps.Tasks)},
		{Method: http.MethodGet, Path: "/authed/todos", Protected: true, Handler: tasks.ListHandler(deps.Tasks)},
	}
}

// NewRouter はルーティング表から gin.Engine を一度だけ組み立てます。
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("store is nil")
	}
	if deps.Users == nil {
		return nil, errors.New("users service is nil")
	}
	if deps.Tasks == nil {
		return nil, errors.New("tasks service is nil")
	}
	if deps.Gate == nil {
		return nil, errors.New("gate is nil")
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID())
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	}

	requireToken := deps.Gate.RequireToken()
	for _, route := range Routes(deps) {
		handlers := []gin.HandlerFunc{route.Handler}
		if route.Protected {
			handlers = []gin.HandlerFunc{requireToken, route.Handler}
		}
		router.Handle(route.Method, route.Path, handlers...)
	}
	return router, nil
}

// SplitOrigins はカンマ区切りのオリジン設定を配列に変換します。
func SplitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		auth.TokenHeader,
		RequestIDHeader,
	}
	cfg.ExposeHeaders = []string{RequestIDHeader}
	return cfg
}

// healthHandler はヘルスチェックエンドポイントのハンドラーを返します。
// ストアが使用不能になっていれば 503 を返します。
func healthHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if st.Poisoned() {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"service": "task-ledger-api",
			"version": "0.1.0",
		})
	}
}
