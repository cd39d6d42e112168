// Package ai は生成AIコラボレーターへのクライアントを提供する。
// タスク抽出、目標ブレインストーミング、サブタスク分解、メール草稿、
// スケジュール生成の5種のサービスを、OpenAI互換のchat completions API
// 1本の上に実装する。各サービスの応答は契約スキーマに対して明示的に
// 検証され、不一致は型付きエラーとなる（暗黙のキャストに頼らない）。
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/planman/internal/metrics"
	"github.com/hitoshi/planman/internal/model"
	"github.com/hitoshi/planman/internal/security"
)

// defaultEndpoint はOpenAI互換chat completions APIのエンドポイント。
const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client は生成AI APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  security.ContentSanitizerService
	metrics    metrics.MetricsCollector
	apiKey     string
	model      string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
// endpointが空の場合はデフォルトのエンドポイントを使用する。
func NewClient(
	httpClient *http.Client,
	logger *slog.Logger,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
	apiKey, model, endpoint string,
) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		sanitizer:  sanitizer,
		metrics:    collector,
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
	}
}

// chatMessage はchat completions APIのメッセージ。
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest はchat completions APIのリクエストボディ。
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat は応答形式の指定。JSONモードを要求するために使用する。
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse はchat completions APIのレスポンスボディ。
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete はchat completions APIを1回呼び出し、応答テキストを返す。
// 利用可能なテキストが得られない場合はAIEmptyResponseエラーを返す。
func (c *Client) complete(ctx context.Context, operation, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.4,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAIRequest(operation, "transport_error")
		c.logger.Error("AIサービスの呼び出しに失敗しました",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("failed to call AI service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordAIRequest(operation, "transport_error")
		return "", fmt.Errorf("failed to read AI response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordAIRequest(operation, "http_error")
		c.logger.Error("AIサービスがエラーステータスを返しました",
			slog.String("operation", operation),
			slog.Int("http_status", resp.StatusCode),
		)
		return "", fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		c.metrics.RecordAIRequest(operation, "parse_error")
		return "", model.NewAIParseFailedError(operation)
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		c.metrics.RecordAIRequest(operation, "empty")
		return "", model.NewAIEmptyResponseError(operation)
	}

	c.metrics.RecordAIRequest(operation, "success")
	c.metrics.RecordAILatency(time.Since(start))

	return chatResp.Choices[0].Message.Content, nil
}

// decodeInto は応答テキストを契約スキーマにデコードする。
// コードフェンスで囲まれたJSONも受理する。デコード失敗はAIParseFailedエラーとなる。
func decodeInto(operation, raw string, v any) error {
	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return model.NewAIParseFailedError(operation)
	}
	return nil
}

// stripCodeFence はMarkdownコードフェンスを取り除く。
// AIはJSONを```json ... ```で囲んで返すことがある。
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
