package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(generalBurst, aiBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // 補充をほぼ止めてバーストのみで判定する
		GeneralBurst:    generalBurst,
		AIRate:          rate.Limit(0.001),
		AIBurst:         aiBurst,
		CleanupInterval: time.Hour,
	})
}

func doRequest(handler http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestGeneralMiddleware_AllowsWithinBurst はバースト内のリクエストが
// 通過することをテストする。
func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	for i := 0; i < 3; i++ {
		if rec := doRequest(handler, "user-1"); rec.Code != http.StatusOK {
			t.Fatalf("リクエスト%d: ステータス = %d, want 200", i+1, rec.Code)
		}
	}
}

// TestGeneralMiddleware_RejectsOverBurst は制限超過のリクエストが
// 429とRetry-Afterで拒否されることをテストする。
func TestGeneralMiddleware_RejectsOverBurst(t *testing.T) {
	rl := newTestRateLimiter(2, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	doRequest(handler, "user-1")
	doRequest(handler, "user-1")

	rec := doRequest(handler, "user-1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("ステータス = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-Afterヘッダーが設定されていない")
	}
}

// TestGeneralMiddleware_PerUserIsolation はユーザーごとに独立した
// 制限が適用されることをテストする。
func TestGeneralMiddleware_PerUserIsolation(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	if rec := doRequest(handler, "user-1"); rec.Code != http.StatusOK {
		t.Fatalf("user-1の初回リクエストが拒否された: %d", rec.Code)
	}
	if rec := doRequest(handler, "user-1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1の2回目は拒否されるべき: %d", rec.Code)
	}
	// 別ユーザーは影響を受けない
	if rec := doRequest(handler, "user-2"); rec.Code != http.StatusOK {
		t.Errorf("user-2のリクエストが拒否された: %d", rec.Code)
	}
}

// TestAIMiddleware_IndependentOfGeneral はAI制限がAPI全般の制限と
// 独立して動作することをテストする。
func TestAIMiddleware_IndependentOfGeneral(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(okHandler())
	ai := rl.AIMiddleware()(okHandler())

	// API全般の制限を使い切る
	doRequest(general, "user-1")
	if rec := doRequest(general, "user-1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("API全般の制限が効いていない: %d", rec.Code)
	}

	// AI側はまだ通過できる
	if rec := doRequest(ai, "user-1"); rec.Code != http.StatusOK {
		t.Errorf("AI制限はAPI全般と独立であるべき: %d", rec.Code)
	}
}

// TestMiddleware_MissingUserID はユーザーIDなしのリクエストが
// 401で拒否されることをテストする。
func TestMiddleware_MissingUserID(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ステータス = %d, want 401", rec.Code)
	}
}

// TestCleanup_RemovesStaleEntries は長期間アクセスのないエントリが
// クリーンアップで削除されることをテストする。
func TestCleanup_RemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1),
		GeneralBurst:    1,
		AIRate:          rate.Limit(1),
		AIBurst:         1,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	doRequest(handler, "user-1")

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("エントリ数 = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupInterval×2）を十分超えるまで待つ
	deadline := time.Now().Add(time.Second)
	for rl.GeneralLimiterCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("期限切れエントリが削除されていない: %d", rl.GeneralLimiterCount())
	}
}
