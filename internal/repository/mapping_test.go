package repository

import (
	"testing"
)

func TestPersonFromValues_AllFields(t *testing.T) {
	p := personFromValues(map[string]any{
		"id":         "node-1",
		"name":       "Alice",
		"nickname":   "Al",
		"gender":     "F",
		"birthday":   "1990-01-01",
		"phone":      "555-1234",
		"email":      "alice@example.com",
		"city":       "Shanghai",
		"resources":  "funding",
		"needs":      "mentoring",
		"created_at": "2026-03-01T12:00:00.000000000Z",
		"updated_at": "2026-03-02T09:00:00.000000000Z",
	})

	if p.ID != "node-1" || p.Name != "Alice" {
		t.Errorf("identity fields = (%q, %q)", p.ID, p.Name)
	}
	if p.Nickname == nil || *p.Nickname != "Al" {
		t.Errorf("Nickname = %v", p.Nickname)
	}
	if p.City == nil || *p.City != "Shanghai" {
		t.Errorf("City = %v", p.City)
	}
	if p.CreatedAt != "2026-03-01T12:00:00.000000000Z" {
		t.Errorf("CreatedAt = %q", p.CreatedAt)
	}
}

func TestPersonFromValues_MissingOptionalsAreNil(t *testing.T) {
	p := personFromValues(map[string]any{
		"id":   "node-1",
		"name": "Bob",
		// グラフストアで未設定のプロパティはnilで返る
		"nickname": nil,
	})

	if p.Nickname != nil {
		t.Errorf("Nickname = %v, want nil", p.Nickname)
	}
	if p.Email != nil {
		t.Errorf("Email = %v, want nil", p.Email)
	}
	if p.CreatedAt != "" {
		t.Errorf("CreatedAt = %q, want empty", p.CreatedAt)
	}
}

func TestUserFromValues(t *testing.T) {
	u := userFromValues(map[string]any{
		"id":            "node-2",
		"name":          "Alice",
		"open_id":       "ou_abc",
		"created_at":    "2026-03-01T12:00:00.000000000Z",
		"last_login_at": "2026-03-02T09:00:00.000000000Z",
		"level":         int64(3),
		"deleted":       false,
	})

	if u.OpenID != "ou_abc" {
		t.Errorf("OpenID = %q", u.OpenID)
	}
	if u.Level != 3 {
		t.Errorf("Level = %d, want 3", u.Level)
	}
	if u.Deleted {
		t.Error("Deleted = true, want false")
	}
}

func TestUserFromValues_MissingLevelDefaultsToZero(t *testing.T) {
	u := userFromValues(map[string]any{
		"id":      "node-2",
		"open_id": "ou_abc",
	})

	if u.Level != 0 {
		t.Errorf("Level = %d, want 0", u.Level)
	}
}

func TestMessageFromValues(t *testing.T) {
	m := messageFromValues(map[string]any{
		"id":           "node-3",
		"date":         "2026-03-01T12:00:00.000000000Z",
		"text":         "Welcome! 👋 We're glad to have you in HM.",
		"read":         true,
		"message_type": "System",
	})

	if m.ID != "node-3" || !m.Read || m.MessageType != "System" {
		t.Errorf("message = %+v", m)
	}
}

func TestOptParam(t *testing.T) {
	if optParam(nil) != nil {
		t.Error("optParam(nil) should be nil")
	}

	s := "value"
	if got := optParam(&s); got != "value" {
		t.Errorf("optParam = %v, want value", got)
	}
}
