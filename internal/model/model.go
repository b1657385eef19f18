// Package model はドメインモデルを定義する。
package model

import "time"

// Person は連絡先ディレクトリの1件を表す。
// グラフストアのPersonノードに対応し、他エンティティとの関係は持たない。
type Person struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Nickname  *string `json:"nickname"`
	Gender    *string `json:"gender"`
	Birthday  *string `json:"birthday"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	City      *string `json:"city"`
	Resources *string `json:"resources"`
	Needs     *string `json:"needs"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// User は認証済みアカウントを表す。
// open_idはIDプロバイダーが発行する安定識別子で、自然キーとして機能する。
// deletedは論理削除フラグ（将来用）。読み取りは常に非削除ユーザーに限定する。
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OpenID      string `json:"open_id"`
	CreatedAt   string `json:"created_at"`
	LastLoginAt string `json:"last_login_at"`
	Level       int64  `json:"level"`
	Deleted     bool   `json:"deleted"`
}

// InboxMessage はユーザーの受信箱の通知メッセージを表す。
// Userと1対多のHAS_MESSAGE関係で結ばれる。readフラグ以外は作成後不変。
type InboxMessage struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Text        string `json:"text"`
	Read        bool   `json:"read"`
	MessageType string `json:"message_type"`
}

// Profile はIDプロバイダーから取得したユーザー情報を表す。
// 最低限open_idとnameを含む。
type Profile struct {
	OpenID    string `json:"open_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Email     string `json:"email,omitempty"`
}

// UserInfo はプロバイダーのプロフィールにUserレコードの一部を重ねた、
// セッションとログインレスポンスに使うビューを表す。
type UserInfo struct {
	OpenID      string `json:"open_id"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Level       int64  `json:"level,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// SessionData はセッションストアに保持するペイロード。
type SessionData struct {
	UserInfo UserInfo `json:"user_info"`
}

// Session はログインセッションを表す。
// ExpiresAtのゼロ値は無期限を意味する。
type Session struct {
	ID        string      `json:"id"`
	Data      SessionData `json:"data"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

// NetworkStats はネットワーク統計を表す。
type NetworkStats struct {
	TotalPeople int64 `json:"total_people"`
}
