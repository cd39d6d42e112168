// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/planman/internal/ai"
	"github.com/hitoshi/planman/internal/auth"
	"github.com/hitoshi/planman/internal/config"
	"github.com/hitoshi/planman/internal/dataservice"
	"github.com/hitoshi/planman/internal/database"
	"github.com/hitoshi/planman/internal/handler"
	"github.com/hitoshi/planman/internal/logger"
	"github.com/hitoshi/planman/internal/metrics"
	"github.com/hitoshi/planman/internal/middleware"
	"github.com/hitoshi/planman/internal/repository"
	"github.com/hitoshi/planman/internal/security"
	"github.com/hitoshi/planman/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップ
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

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
		slog.Bool("remote_enabled", cfg.RemoteEnabled()),
		slog.Bool("ai_enabled", cfg.AIEnabled()),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// ローカルストアを開き（必要ならリモートストアも）、全依存関係を
// ワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ローカルストアの接続とマイグレーション（常に必要）
	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer localDB.Close()

	if err := database.RunLocalMigrations(localDB); err != nil {
		return fmt.Errorf("failed to migrate local store: %w", err)
	}

	slog.Info("local store ready", slog.String("path", cfg.LocalDBPath))

	// 2. リモートストアの接続（設定されている場合のみ）。
	// 起動時に接続できない場合はリモートモードを無効にして続行する。
	var remoteDB *sql.DB
	if cfg.RemoteEnabled() {
		remoteDB, err = database.Open(cfg.DatabaseURL)
		if err == nil {
			err = remoteDB.Ping()
		}
		if err != nil {
			slog.Warn("remote store unavailable at startup, running local-only",
				slog.String("error", err.Error()),
			)
			if remoteDB != nil {
				remoteDB.Close()
			}
			remoteDB = nil
		} else {
			defer remoteDB.Close()
			slog.Info("remote store connection established")
		}
	}

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. リポジトリの初期化
	local := &dataservice.RepoSet{
		Tasks:     repository.NewSQLiteTaskRepo(localDB),
		Contacts:  repository.NewSQLiteContactRepo(localDB),
		Templates: repository.NewSQLiteTemplateRepo(localDB),
		Plans:     repository.NewSQLitePlanRepo(localDB),
		Users:     repository.NewSQLiteUserRepo(localDB),
	}

	var remote *dataservice.RepoSet
	if remoteDB != nil {
		remote = &dataservice.RepoSet{
			Tasks:     repository.NewPostgresTaskRepo(remoteDB),
			Contacts:  repository.NewPostgresContactRepo(remoteDB),
			Templates: repository.NewPostgresTemplateRepo(remoteDB),
			Plans:     repository.NewPostgresPlanRepo(remoteDB),
			Users:     repository.NewPostgresUserRepo(remoteDB),
		}
	}

	// セッションとアクティブプロファイルポインタはデバイス固有のため常にローカル
	sessionRepo := repository.NewSQLiteSessionRepo(localDB)
	pointerRepo := repository.NewSQLitePointerRepo(localDB)

	// 5. セキュリティサービスの初期化
	attachmentGuard := security.NewAttachmentGuard()
	sanitizer := security.NewContentSanitizer()

	// 6. ドメインサービスの初期化
	oauthProvider := auth.NewSimulatedProvider(cfg.BaseURL)
	authService := auth.NewService(
		oauthProvider, sessionRepo, pointerRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	dataService := dataservice.NewService(
		remote, local, authService, pointerRepo, attachmentGuard, collector,
	)

	var aiService handler.AIServiceInterface
	if cfg.AIEnabled() {
		aiService = ai.NewClient(
			&http.Client{Timeout: cfg.AITimeout},
			slog.Default(),
			sanitizer,
			collector,
			cfg.AIAPIKey, cfg.AIModel, cfg.AIEndpoint,
		)
	}

	// 7. レート制限の構成（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AIRate = rate.Limit(float64(cfg.RateLimitAI) / 60.0)
	rateLimiterCfg.AIBurst = cfg.RateLimitAI

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		AuthService: dataService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		TaskService:     dataService,
		ContactService:  dataService,
		TemplateService: dataService,
		PlanService:     dataService,

		AIService: aiService,

		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 9. セッションクリーンアップジョブの起動
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, slog.Default())
	cleanupJob.Start(cleanupCtx, cfg.SessionCleanupInterval)

	// 10. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI支援エンドポイントは応答に時間がかかる
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// ローカルストアを初期化し、リモートストアが設定されていれば
// 未適用のリモートマイグレーションも順番に適用する。
func runMigrate(cfg *config.Config) error {
	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer localDB.Close()

	if err := database.RunLocalMigrations(localDB); err != nil {
		return fmt.Errorf("local migration failed: %w", err)
	}
	slog.Info("local store migrations completed")

	if !cfg.RemoteEnabled() {
		slog.Info("DATABASE_URL not set, skipping remote migrations")
		return nil
	}

	slog.Info("running remote database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("remote migration failed: %w", err)
	}

	slog.Info("remote database migrations completed successfully")
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

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
