// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hm-community/hmnet/internal/metrics"
	"github.com/hm-community/hmnet/internal/model"
	"github.com/hm-community/hmnet/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionDataContextKey はリクエストコンテキストにセッションデータを格納するためのキー。
var sessionDataContextKey = contextKey("session_data")

// NewSessionMiddleware は署名付きCookieからセッションを読み取り、
// 有効性を検証するミドルウェアを返す。
// 検証済みのセッションデータをリクエストコンテキストに注入する。
// Cookieの欠落・署名不正・セッション不在・ペイロード不備のいずれも
// 403 Forbiddenとして扱う。
func NewSessionMiddleware(codec *session.Codec, store session.Store, collector metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				rejectSession(w, collector)
				return
			}

			// 署名を検証してからストアを引く
			sessionID, err := codec.Decode(cookie.Value)
			if err != nil {
				rejectSession(w, collector)
				return
			}

			sess, err := store.Find(r.Context(), sessionID)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				rejectSession(w, collector)
				return
			}
			if sess == nil || !session.Verify(&sess.Data) {
				rejectSession(w, collector)
				return
			}

			ctx := context.WithValue(r.Context(), sessionDataContextKey, &sess.Data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectSession は未認証リクエストへの統一レスポンスを書き込み、拒否を記録する。
func rejectSession(w http.ResponseWriter, collector metrics.MetricsCollector) {
	collector.RecordSessionRejected()
	writeInvalidSession(w)
}

// writeInvalidSession は未認証リクエストへの統一レスポンスを書き込む。
func writeInvalidSession(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusForbidden, model.NewInvalidSessionError())
}

// SessionDataFromContext はリクエストコンテキストからセッションデータを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func SessionDataFromContext(ctx context.Context) (*model.SessionData, error) {
	data, ok := ctx.Value(sessionDataContextKey).(*model.SessionData)
	if !ok || data == nil {
		return nil, fmt.Errorf("session data not found in context")
	}
	return data, nil
}

// OpenIDFromContext はリクエストコンテキストから認証済みユーザーのopen_idを取得する。
func OpenIDFromContext(ctx context.Context) (string, error) {
	data, err := SessionDataFromContext(ctx)
	if err != nil {
		return "", err
	}
	if data.UserInfo.OpenID == "" {
		return "", fmt.Errorf("open_id not found in session data")
	}
	return data.UserInfo.OpenID, nil
}

// ContextWithSessionData はコンテキストにセッションデータを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSessionData(ctx context.Context, data *model.SessionData) context.Context {
	return context.WithValue(ctx, sessionDataContextKey, data)
}
