package repository

import (
	"github.com/hm-community/hmnet/internal/model"
)

// このファイルはクエリ結果のレコード（キー→値のマップ）から
// ドメインモデルへの変換を行う純粋関数を集める。
// グラフストアに存在しないプロパティはnilとして返るため、
// 各ヘルパーは型不一致とnilを空値として扱う。

// stringValue はレコードの文字列値を返す。欠損時は空文字列。
func stringValue(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// optStringValue はレコードの文字列値をポインタで返す。欠損時はnil。
func optStringValue(m map[string]any, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

// boolValue はレコードの真偽値を返す。欠損時はfalse。
func boolValue(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// intValue はレコードの整数値を返す。欠損時は0。
func intValue(m map[string]any, key string) int64 {
	if v, ok := m[key].(int64); ok {
		return v
	}
	return 0
}

// optParam はポインタフィールドをクエリパラメータ値に変換する。
func optParam(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// personFromValues はレコードからPersonを組み立てる。
func personFromValues(m map[string]any) *model.Person {
	return &model.Person{
		ID:        stringValue(m, "id"),
		Name:      stringValue(m, "name"),
		Nickname:  optStringValue(m, "nickname"),
		Gender:    optStringValue(m, "gender"),
		Birthday:  optStringValue(m, "birthday"),
		Phone:     optStringValue(m, "phone"),
		Email:     optStringValue(m, "email"),
		City:      optStringValue(m, "city"),
		Resources: optStringValue(m, "resources"),
		Needs:     optStringValue(m, "needs"),
		CreatedAt: stringValue(m, "created_at"),
		UpdatedAt: stringValue(m, "updated_at"),
	}
}

// userFromValues はレコードからUserを組み立てる。
func userFromValues(m map[string]any) *model.User {
	return &model.User{
		ID:          stringValue(m, "id"),
		Name:        stringValue(m, "name"),
		OpenID:      stringValue(m, "open_id"),
		CreatedAt:   stringValue(m, "created_at"),
		LastLoginAt: stringValue(m, "last_login_at"),
		Level:       intValue(m, "level"),
		Deleted:     boolValue(m, "deleted"),
	}
}

// messageFromValues はレコードからInboxMessageを組み立てる。
func messageFromValues(m map[string]any) *model.InboxMessage {
	return &model.InboxMessage{
		ID:          stringValue(m, "id"),
		Date:        stringValue(m, "date"),
		Text:        stringValue(m, "text"),
		Read:        boolValue(m, "read"),
		MessageType: stringValue(m, "message_type"),
	}
}
