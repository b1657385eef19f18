// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, directory, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUpstreamAuth    = "UPSTREAM_AUTH_ERROR"
	ErrCodePersonNotFound  = "PERSON_NOT_FOUND"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeMessageNotFound = "MESSAGE_NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeInvalidSession  = "INVALID_SESSION"
)

// NewUpstreamAuthError はIDプロバイダー側のエラーを表すエラーを生成する。
func NewUpstreamAuthError(code int, msg string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamAuth,
		Message:  fmt.Sprintf("IDプロバイダーが認証を拒否しました: %d:%s", code, msg),
		Category: "auth",
		Action:   "もう一度ログインしてください。",
	}
}

// NewPersonNotFoundError は人物未検出エラーを生成する。
func NewPersonNotFoundError(personID string) *APIError {
	return &APIError{
		Code:     ErrCodePersonNotFound,
		Message:  fmt.Sprintf("指定された人物が見つかりません: %s", personID),
		Category: "directory",
		Action:   "人物IDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewMessageNotFoundError は受信箱メッセージの未検出エラーを生成する。
// 存在しない、別ユーザー所有、既読済みのいずれも同じエラーとして扱う。
func NewMessageNotFoundError(messageID string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("指定されたメッセージが見つからないか、既に既読です: %s", messageID),
		Category: "directory",
		Action:   "受信箱を再読み込みしてください。",
	}
}

// NewValidationError は必須フィールド不足などの検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidSessionError は無効セッションエラーを生成する。
func NewInvalidSessionError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSession,
		Message:  "セッションが無効です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}
