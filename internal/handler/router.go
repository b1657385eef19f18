package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hm-community/hmnet/internal/metrics"
	"github.com/hm-community/hmnet/internal/middleware"
	"github.com/hm-community/hmnet/internal/session"
)

// HealthChecker はヘルスチェックでのバックエンド疎通確認に必要なインターフェース。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionCodec      *session.Codec
	SessionStore      session.Store
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 連絡先ディレクトリ
	PeopleService PeopleServiceInterface

	// ユーザー・受信箱
	UserService UserServiceInterface

	// ネットワーク統計
	NetworkService NetworkServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//
// 認証が必要なルートにはさらにSession → RateLimit(General)を適用する。
// 公開APIとログインコールバックは未認証のままIP単位のレート制限を受ける。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionCodec, deps.AuthConfig, deps.Collector)
	peopleHandler := NewPeopleHandler(deps.PeopleService)
	userHandler := NewUserHandler(deps.UserService)
	networkHandler := NewNetworkHandler(deps.NetworkService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api/auth", func(r chi.Router) {
		// コールバックはIP単位のレート制限で総当たりを抑える
		r.With(deps.RateLimiter.LoginMiddleware()).Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
	})
	r.Get("/api/settings", authHandler.Settings)

	// 連絡先ディレクトリとネットワーク統計はセッション不要の公開API。
	// IP単位のレート制限のみ適用する。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.PublicMiddleware())

		r.Route("/api/people", func(r chi.Router) {
			r.Get("/", peopleHandler.List)
			r.Post("/", peopleHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", peopleHandler.Get)
				r.Put("/", peopleHandler.Update)
				r.Delete("/", peopleHandler.Delete)
			})
		})

		r.Get("/api/network/stat", networkHandler.Stats)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionCodec, deps.SessionStore, deps.Collector))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー管理
		r.Get("/api/users/me", userHandler.Me)

		// 受信箱
		r.Route("/api/inbox", func(r chi.Router) {
			r.Get("/", userHandler.ListInbox)
			r.Post("/{id}/read", userHandler.MarkRead)
		})
	})

	return r
}

// newHealthHandler はバックエンドの疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Ping(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
