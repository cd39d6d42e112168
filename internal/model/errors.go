// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, ai, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeContactNotFound     = "CONTACT_NOT_FOUND"
	ErrCodeTemplateNotFound    = "TEMPLATE_NOT_FOUND"
	ErrCodePlanNotFound        = "PLAN_NOT_FOUND"
	ErrCodeBuiltinImmutable    = "BUILTIN_IMMUTABLE"
	ErrCodeInvalidPriority     = "INVALID_PRIORITY"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeUnsafeAttachmentURL = "UNSAFE_ATTACHMENT_URL"
	ErrCodeAIEmptyResponse     = "AI_EMPTY_RESPONSE"
	ErrCodeAIParseFailed       = "AI_PARSE_FAILED"
	ErrCodeAIUnavailable       = "AI_UNAVAILABLE"
)

// NewDuplicateEmailError は登録済みメールアドレスの再登録エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "validation",
		Action:   "タスクIDを確認してください。",
	}
}

// NewContactNotFoundError は連絡先未検出エラーを生成する。
func NewContactNotFoundError(contactID string) *APIError {
	return &APIError{
		Code:     ErrCodeContactNotFound,
		Message:  fmt.Sprintf("指定された連絡先が見つかりません: %s", contactID),
		Category: "validation",
		Action:   "連絡先IDを確認してください。",
	}
}

// NewTemplateNotFoundError はテンプレート未検出エラーを生成する。
func NewTemplateNotFoundError(templateID string) *APIError {
	return &APIError{
		Code:     ErrCodeTemplateNotFound,
		Message:  fmt.Sprintf("指定されたテンプレートが見つかりません: %s", templateID),
		Category: "validation",
		Action:   "テンプレートIDを確認してください。",
	}
}

// NewPlanNotFoundError は指定日の予定が存在しないエラーを生成する。
func NewPlanNotFoundError(date string) *APIError {
	return &APIError{
		Code:     ErrCodePlanNotFound,
		Message:  fmt.Sprintf("指定された日付の予定が見つかりません: %s", date),
		Category: "validation",
		Action:   "予定を生成してから再度お試しください。",
	}
}

// NewBuiltinImmutableError は組み込みテンプレートの変更エラーを生成する。
func NewBuiltinImmutableError() *APIError {
	return &APIError{
		Code:     ErrCodeBuiltinImmutable,
		Message:  "組み込みテンプレートは変更・削除できません。",
		Category: "validation",
		Action:   "ユーザー作成のテンプレートを対象にしてください。",
	}
}

// NewInvalidPriorityError は無効な優先度エラーを生成する。
func NewInvalidPriorityError(priority string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPriority,
		Message:  fmt.Sprintf("無効な優先度です: %s", priority),
		Category: "validation",
		Action:   "優先度には LOW、MEDIUM、HIGH、URGENT のいずれかを指定してください。",
	}
}

// NewInvalidStatusError は無効なタスク状態エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なタスク状態です: %s", status),
		Category: "validation",
		Action:   "状態には TODO、IN_PROGRESS、COMPLETED のいずれかを指定してください。",
	}
}

// NewUnsafeAttachmentURLError は添付URLの安全性検証エラーを生成する。
func NewUnsafeAttachmentURLError() *APIError {
	return &APIError{
		Code:     ErrCodeUnsafeAttachmentURL,
		Message:  "セキュリティポリシーにより、指定された添付URLは保存できません。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを指定してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewAIEmptyResponseError はAIサービスが利用可能なテキストを返さなかったエラーを生成する。
func NewAIEmptyResponseError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeAIEmptyResponse,
		Message:  fmt.Sprintf("AIサービスから利用可能な応答を取得できませんでした: %s", operation),
		Category: "ai",
		Action:   "入力内容を変えて再度お試しください。",
	}
}

// NewAIParseFailedError はAI応答が契約スキーマにパースできなかったエラーを生成する。
func NewAIParseFailedError(operation string) *APIError {
	return &APIError{
		Code:     ErrCodeAIParseFailed,
		Message:  fmt.Sprintf("応答の解析に失敗しました: %s", operation),
		Category: "ai",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewAIUnavailableError はAIサービスが設定されていないエラーを生成する。
func NewAIUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeAIUnavailable,
		Message:  "AIサービスが設定されていません。",
		Category: "ai",
		Action:   "AI_API_KEY を設定してからサーバーを再起動してください。",
	}
}
