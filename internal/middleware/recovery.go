package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はハンドラー内のpanicを補足し、スタックトレースを
// ログに残したうえでAPIエラー形式の500レスポンスを返すミドルウェアを返す。
// ダッシュボード集計のような派生計算でのpanicがサーバー全体を落とさないようにする。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"code":     "INTERNAL_ERROR",
						"message":  "サーバー内部でエラーが発生しました。",
						"category": "system",
						"action":   "しばらくしてから再試行してください。",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
