// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hm-community/hmnet/internal/metrics"
	"github.com/hm-community/hmnet/internal/model"
	"github.com/hm-community/hmnet/internal/session"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int  // セッションCookieの有効期間（秒）。0はブラウザセッション限り
	AppID         string
	MockLogin     bool
}

// AuthHandler はログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	codec     *session.Codec
	config    AuthHandlerConfig
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, codec *session.Codec, config AuthHandlerConfig, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service:   service,
		codec:     codec,
		config:    config,
		collector: collector,
	}
}

// Callback は認可コールバックを処理する。
// 認可コードをセッションに交換し、署名付きCookieとユーザー情報を返す。
// GET /api/auth/callback?code=xxx
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		h.collector.RecordLoginFailure("missing_code")
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("認可コードがありません"))
		return
	}

	sess, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUpstreamAuth {
			h.collector.RecordLoginFailure("upstream_rejected")
		} else {
			h.collector.RecordLoginFailure("internal")
		}
		slog.Error("login callback failed", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	// セッションIDはHMAC署名付きでCookieに載せる
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    h.codec.Encode(sess.ID),
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.collector.RecordLoginSuccess()
	writeJSON(w, http.StatusOK, sess.Data.UserInfo)
}

// Logout はセッションを破棄し、Cookieをクリアする。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if sessionID, decodeErr := h.codec.Decode(cookie.Value); decodeErr == nil {
			if logoutErr := h.service.Logout(r.Context(), sessionID); logoutErr != nil {
				slog.Error("failed to logout", slog.String("error", logoutErr.Error()))
				// ログアウト失敗してもCookieはクリアする
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// settingsResponse はフロントエンド初期化用の公開設定。
type settingsResponse struct {
	AppID    string `json:"appid"`
	MockUser bool   `json:"mock_user"`
}

// Settings はログインウィジェットの初期化に必要な公開設定を返す。
// GET /api/settings
func (h *AuthHandler) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		AppID:    h.config.AppID,
		MockUser: h.config.MockLogin,
	})
}
