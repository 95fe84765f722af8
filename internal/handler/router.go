package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/usercrud/internal/middleware"
	"github.com/hitoshi/usercrud/internal/web"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TrustProxyHeaders bool                    // trueの場合のみX-Forwarded-For/X-Real-IPをRemoteAddrへ反映する
	RateLimiter       *middleware.RateLimiter // nilの場合はレート制限なし
	Metrics           middleware.HTTPMetricsRecorder
	MetricsHandler    http.Handler

	// ユーザー
	UserService UserServiceInterface
	UserConfig  UserHandlerConfig

	// ページ・運用
	Renderer *web.Renderer
	Pinger   Pinger
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → (RealIP) → Logging → Metrics → Recovery → SecurityHeaders → CORS → RateLimit
//
// /health と /metrics はレート制限の外に配置する。
// RealIPはTrustProxyHeadersが有効な場合のみ挿入し、既定では接続元アドレスで識別する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.Pinger).Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Handle("/public/*", web.StaticHandler("/public/"))

	// --- アプリケーションルート ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/", NewPageHandler(deps.UserService, deps.Renderer).Index)
		mountUserRoutes(r, NewUserHandler(deps.UserService, deps.UserConfig))
	})

	return r
}
