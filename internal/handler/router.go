package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/planman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// データサービス
	TaskService     TaskServiceInterface
	ContactService  ContactServiceInterface
	TemplateService TemplateServiceInterface
	PlanService     PlanServiceInterface

	// AI支援（無効時はnil）
	AIService AIServiceInterface

	// 運用エンドポイント
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → SessionMiddleware → LoggingMiddleware → CSRFMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// セッションミドルウェアはCookieがないリクエストをゲストとして通すため、
// 認証ルートを含むすべてのルートがチェーンの内側に置かれる。
// /health と /metrics と /api/csrf-token のみチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	taskHandler := NewTaskHandler(deps.TaskService)
	contactHandler := NewContactHandler(deps.ContactService)
	templateHandler := NewTemplateHandler(deps.TemplateService)
	planHandler := NewPlanHandler(deps.PlanService)
	dashboardHandler := NewDashboardHandler(deps.TaskService)
	aiHandler := NewAIHandler(deps.AIService, deps.TaskService)

	// --- 運用エンドポイント（ミドルウェアチェーン外） ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// CSRFトークン取得（認証不要。フロントエンドが状態変更リクエスト前に取得する）
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// --- アプリケーションルート ---
	// ミドルウェアスタック: Session → Logging → CSRF → RateLimit(General)
	// LoggingはSessionの後に置き、解決済みユーザーIDをログに含める。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewLoggingMiddleware(slog.Default()))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Get("/social/{provider}/login", authHandler.SocialLoginStart)
			r.Post("/social/{provider}", authHandler.SocialLogin)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			// DELETE /api/tasks/completed は /{id} より先に定義する
			r.Delete("/completed", taskHandler.ClearCompleted)

			// 添付URLの事前検証
			r.Post("/attachment/verify", taskHandler.VerifyAttachment)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
			})
		})

		// 連絡先管理
		r.Route("/api/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.ListContacts)
			r.Post("/", contactHandler.CreateContact)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", contactHandler.UpdateContact)
				r.Delete("/", contactHandler.DeleteContact)
			})
		})

		// テンプレート管理
		r.Route("/api/templates", func(r chi.Router) {
			r.Get("/", templateHandler.ListTemplates)
			r.Post("/", templateHandler.CreateTemplate)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", templateHandler.UpdateTemplate)
				r.Delete("/", templateHandler.DeleteTemplate)
			})
		})

		// 日次予定管理
		r.Route("/api/plans", func(r chi.Router) {
			r.Get("/", planHandler.ListPlans)

			r.Route("/{date}", func(r chi.Router) {
				r.Get("/", planHandler.GetPlan)
				r.Put("/", planHandler.SavePlan)
			})
		})

		// ダッシュボード
		r.Get("/api/dashboard", dashboardHandler.GetDashboard)

		// AI支援（AI専用レート制限を追加で適用）
		r.Route("/api/ai", func(r chi.Router) {
			r.Use(deps.RateLimiter.AIMiddleware())

			r.Post("/extract", aiHandler.Extract)
			r.Post("/brainstorm", aiHandler.Brainstorm)
			r.Post("/subtasks", aiHandler.Breakdown)
			r.Post("/reminder", aiHandler.Reminder)
			r.Post("/briefing", aiHandler.Briefing)
			r.Post("/schedule", aiHandler.Schedule)
		})
	})

	return r
}
