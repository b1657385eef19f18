package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hm-community/hmnet/internal/middleware"
	"github.com/hm-community/hmnet/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Me(ctx context.Context, openID string) (*model.User, error)
	ListInbox(ctx context.Context, openID string) ([]*model.InboxMessage, error)
	MarkRead(ctx context.Context, openID, messageID string) (*model.InboxMessage, error)
}

// UserHandler はユーザーと受信箱のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Me は現在のログインユーザーのアカウント情報を返す。
// GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	openID, err := middleware.OpenIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewInvalidSessionError())
		return
	}

	user, err := h.service.Me(r.Context(), openID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ListInbox は受信箱のメッセージ一覧を新しい順で返す。
// GET /api/inbox
func (h *UserHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	openID, err := middleware.OpenIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewInvalidSessionError())
		return
	}

	messages, err := h.service.ListInbox(r.Context(), openID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でもnullではなく空配列を返す
	if messages == nil {
		messages = []*model.InboxMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// MarkRead は受信箱のメッセージを既読にする。
// 対象が存在しない・他ユーザー所有・既読済みの場合は404を返す。
// POST /api/inbox/{id}/read
func (h *UserHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	openID, err := middleware.OpenIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewInvalidSessionError())
		return
	}

	messageID := chi.URLParam(r, "id")

	message, err := h.service.MarkRead(r.Context(), openID, messageID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, message)
}
