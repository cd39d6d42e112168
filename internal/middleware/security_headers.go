package middleware

import "net/http"

// NewSecurityHeadersMiddleware は全レスポンスに防御的ヘッダーを付与するミドルウェアを返す。
// タスクや連絡先には個人情報が含まれるため、APIレスポンスのiframe埋め込みと
// Content-Typeの推測を禁止し、外部遷移時のリファラ送出を制限する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			next.ServeHTTP(w, r)
		})
	}
}
