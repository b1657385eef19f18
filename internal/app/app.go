// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/hm-community/hmnet/internal/auth"
	"github.com/hm-community/hmnet/internal/config"
	"github.com/hm-community/hmnet/internal/database"
	"github.com/hm-community/hmnet/internal/feishu"
	"github.com/hm-community/hmnet/internal/handler"
	"github.com/hm-community/hmnet/internal/logger"
	"github.com/hm-community/hmnet/internal/metrics"
	"github.com/hm-community/hmnet/internal/middleware"
	"github.com/hm-community/hmnet/internal/network"
	"github.com/hm-community/hmnet/internal/people"
	"github.com/hm-community/hmnet/internal/repository"
	"github.com/hm-community/hmnet/internal/session"
	"github.com/hm-community/hmnet/internal/user"
)

// Init はアプリケーションの初期化を行う。
// .envがあれば読み込み、JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// .envはローカル開発用。存在しなければ何もしない
	_ = godotenv.Load()

	// ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// neo4jHealth はヘルスチェック用にドライバーの疎通確認をラップする。
type neo4jHealth struct {
	driver neo4j.DriverWithContext
}

// Ping はグラフストアへの疎通を確認する。
func (h *neo4jHealth) Ping(ctx context.Context) error {
	return database.VerifyConnectivity(ctx, h.driver)
}

// newSessionStore は設定に応じたセッションストアを生成する。
func newSessionStore(cfg *config.Config) session.Store {
	if cfg.SessionBackend == config.SessionBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		slog.Info("using redis session store", slog.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(client)
	}
	slog.Info("using in-memory session store")
	return session.NewMemoryStore()
}

// runServe はAPIサーバーモードで起動する。
// グラフストアへの接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. グラフストア接続
	driver, err := database.Open(cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword)
	if err != nil {
		return fmt.Errorf("failed to open graph store: %w", err)
	}
	defer driver.Close(context.Background())

	ctx, cancelVerify := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.VerifyConnectivity(ctx, driver)
	cancelVerify()
	if err != nil {
		return fmt.Errorf("failed to connect to graph store: %w", err)
	}

	slog.Info("graph store connection established")

	// 2. リポジトリの初期化
	personRepo := repository.NewNeo4jPersonRepo(driver)
	userRepo := repository.NewNeo4jUserRepo(driver)
	inboxRepo := repository.NewNeo4jInboxRepo(driver)

	// 3. セッションストアと署名Codec
	sessionStore := newSessionStore(cfg)
	sessionCodec := session.NewCodec(cfg.SessionSecret)

	// 4. ドメインサービスの初期化
	feishuClient := feishu.NewClient(feishu.Config{
		Host:      cfg.FeishuHost,
		AppID:     cfg.FeishuAppID,
		AppSecret: cfg.FeishuAppSecret,
	})

	userService := user.NewService(userRepo, inboxRepo)
	peopleService := people.NewService(personRepo)
	networkService := network.NewService(personRepo)

	authService := auth.NewService(
		feishuClient, userService, sessionStore,
		auth.ServiceConfig{
			SessionMaxAge: cfg.SessionMaxAge,
			MockLogin:     cfg.MockLogin,
		},
	)

	// 5. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionCodec:      sessionCodec,
		SessionStore:      sessionStore,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Collector: collector,
		Gatherer:  registry,

		HealthChecker: &neo4jHealth{driver: driver},

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
			AppID:         cfg.FeishuAppID,
			MockLogin:     cfg.MockLogin,
		},

		PeopleService:  peopleService,
		UserService:    userService,
		NetworkService: networkService,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はグラフストアのマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	databaseURL, err := database.MigrateURL(cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword)
	if err != nil {
		return fmt.Errorf("failed to build migration URL: %w", err)
	}

	slog.Info("running graph store migrations",
		slog.String("uri", cfg.Neo4jURI),
	)

	if err := database.RunMigrations(databaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("graph store migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
