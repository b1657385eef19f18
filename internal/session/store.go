// Package session はサーバーサイドセッションの保存と署名付きCookieを提供する。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/hm-community/hmnet/internal/model"
)

// Store はセッションの永続化インターフェース。
// ハンドラーにはこの抽象を注入し、バックエンドの実装を差し替え可能にする。
type Store interface {
	// Create はセッションを保存する。
	Create(ctx context.Context, sess *model.Session) error
	// Find は指定IDのセッションを取得する。見つからない場合、期限切れの場合はnilを返す。
	Find(ctx context.Context, id string) (*model.Session, error)
	// Delete は指定IDのセッションを破棄する。存在しないIDは無視する。
	Delete(ctx context.Context, id string) error
}

// NewID は暗号的に安全なセッションIDを生成する。
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Verify はセッションペイロードの有効性を検証する。
// ペイロードが存在し、open_idと表示名の両方を含む場合のみ有効とする。
// 「存在すれば有効」ではなくフィールドの存在検証を行う方針を採る。
func Verify(data *model.SessionData) bool {
	if data == nil {
		return false
	}
	return data.UserInfo.OpenID != "" && data.UserInfo.Name != ""
}
