package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hm-community/hmnet/internal/middleware"
	"github.com/hm-community/hmnet/internal/model"
)

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	meFn        func(ctx context.Context, openID string) (*model.User, error)
	listInboxFn func(ctx context.Context, openID string) ([]*model.InboxMessage, error)
	markReadFn  func(ctx context.Context, openID, messageID string) (*model.InboxMessage, error)
}

func (m *mockUserService) Me(ctx context.Context, openID string) (*model.User, error) {
	if m.meFn != nil {
		return m.meFn(ctx, openID)
	}
	return &model.User{ID: "node-1", OpenID: openID, Name: "Alice", Level: 1}, nil
}

func (m *mockUserService) ListInbox(ctx context.Context, openID string) ([]*model.InboxMessage, error) {
	if m.listInboxFn != nil {
		return m.listInboxFn(ctx, openID)
	}
	return nil, nil
}

func (m *mockUserService) MarkRead(ctx context.Context, openID, messageID string) (*model.InboxMessage, error) {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, openID, messageID)
	}
	return &model.InboxMessage{ID: messageID, Read: true}, nil
}

// withSession はリクエストに検証済みセッションデータを注入する。
func withSession(req *http.Request, openID string) *http.Request {
	data := &model.SessionData{
		UserInfo: model.UserInfo{OpenID: openID, Name: "Alice"},
	}
	return req.WithContext(middleware.ContextWithSessionData(req.Context(), data))
}

// --- GET /api/users/me ---

func TestUserHandler_Me_Success(t *testing.T) {
	svc := &mockUserService{
		meFn: func(ctx context.Context, openID string) (*model.User, error) {
			if openID != "ou_abc" {
				t.Errorf("openID = %q, want ou_abc", openID)
			}
			return &model.User{ID: "node-1", OpenID: openID, Name: "Alice", Level: 2}, nil
		},
	}
	h := NewUserHandler(svc)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "ou_abc")
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var user model.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if user.Level != 2 {
		t.Errorf("Level = %d, want 2", user.Level)
	}
}

func TestUserHandler_Me_NoSession(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	// セッションデータを注入しない
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Result().StatusCode)
	}
}

func TestUserHandler_Me_NotFound(t *testing.T) {
	svc := &mockUserService{
		meFn: func(ctx context.Context, openID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "ou_abc")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Result().StatusCode)
	}
}

func TestUserHandler_Me_InternalError(t *testing.T) {
	svc := &mockUserService{
		meFn: func(ctx context.Context, openID string) (*model.User, error) {
			return nil, errors.New("graph store unavailable")
		},
	}
	h := NewUserHandler(svc)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "ou_abc")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Result().StatusCode)
	}
}

// --- GET /api/inbox ---

func TestUserHandler_ListInbox_EmptyReturnsArray(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/inbox", nil), "ou_abc")
	w := httptest.NewRecorder()

	h.ListInbox(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestUserHandler_ListInbox_Success(t *testing.T) {
	svc := &mockUserService{
		listInboxFn: func(ctx context.Context, openID string) ([]*model.InboxMessage, error) {
			return []*model.InboxMessage{
				{ID: "m2", Date: "2026-03-02T00:00:00.000000000Z", Text: "second", MessageType: "System"},
				{ID: "m1", Date: "2026-03-01T00:00:00.000000000Z", Text: "first", MessageType: "System"},
			}, nil
		},
	}
	h := NewUserHandler(svc)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/inbox", nil), "ou_abc")
	w := httptest.NewRecorder()

	h.ListInbox(w, req)

	var messages []*model.InboxMessage
	if err := json.NewDecoder(w.Body).Decode(&messages); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(messages) != 2 || messages[0].ID != "m2" {
		t.Errorf("messages = %+v", messages)
	}
}

// --- POST /api/inbox/{id}/read ---

func TestUserHandler_MarkRead_Success(t *testing.T) {
	svc := &mockUserService{
		markReadFn: func(ctx context.Context, openID, messageID string) (*model.InboxMessage, error) {
			if openID != "ou_abc" || messageID != "m1" {
				t.Errorf("args = (%q, %q)", openID, messageID)
			}
			return &model.InboxMessage{ID: messageID, Read: true}, nil
		},
	}

	r := chi.NewRouter()
	r.Post("/api/inbox/{id}/read", NewUserHandler(svc).MarkRead)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/inbox/m1/read", nil), "ou_abc")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var message model.InboxMessage
	if err := json.NewDecoder(resp.Body).Decode(&message); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !message.Read {
		t.Error("message should be returned as read")
	}
}

func TestUserHandler_MarkRead_NotFound(t *testing.T) {
	svc := &mockUserService{
		markReadFn: func(ctx context.Context, openID, messageID string) (*model.InboxMessage, error) {
			return nil, model.NewMessageNotFoundError(messageID)
		},
	}

	r := chi.NewRouter()
	r.Post("/api/inbox/{id}/read", NewUserHandler(svc).MarkRead)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/inbox/m9/read", nil), "ou_abc")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Result().StatusCode)
	}
}
