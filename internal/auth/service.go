// Package auth はログインフローとセッション発行のビジネスロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hm-community/hmnet/internal/feishu"
	"github.com/hm-community/hmnet/internal/model"
	"github.com/hm-community/hmnet/internal/session"
)

// MockCode はネットワークを介さずに固定プロフィールを返す特別な認可コード。
// ローカル開発専用で、configのMockLoginが無効な場合は通常のコードとして
// プロバイダーに渡される（そして拒否される）。
const MockCode = "mock"

// mockProfile はMockCodeに対して返す固定プロフィール。
var mockProfile = model.Profile{
	OpenID: "ou_f9697445a083cbad6e15c7d71b63eb74",
	Name:   "Toby",
}

// IdentityProvider は外部IDプロバイダーのインターフェース。
type IdentityProvider interface {
	// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*model.Profile, error)
}

// UserDirectory はログイン時のユーザー確定に必要なインターフェース。
type UserDirectory interface {
	// GetOrCreate はopen_idでユーザーを検索し、いなければ作成する。
	GetOrCreate(ctx context.Context, profile *model.Profile) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int  // セッション有効期間（秒）。0は無期限
	MockLogin     bool // モックログインの許可。外部到達可能な環境では必ず無効にする
}

// Service はログインコールバックの処理とセッションの発行・破棄を提供する。
type Service struct {
	provider  IdentityProvider
	directory UserDirectory
	sessions  session.Store
	config    ServiceConfig

	// テスト用にオーバーライド可能な現在時刻
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(provider IdentityProvider, directory UserDirectory, sessions session.Store, config ServiceConfig) *Service {
	return &Service{
		provider:  provider,
		directory: directory,
		sessions:  sessions,
		config:    config,
		now:       time.Now,
	}
}

// HandleCallback は認可コールバックを処理する。
// コードをプロフィールに交換し、ユーザーを確定し、セッションを発行する。
// 返されるUserInfoはプロフィールにUserレコードのlevel等を重ねたもので、
// セッションペイロードとコールバックレスポンスの両方に使われる。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if code == "" {
		return nil, model.NewValidationError("認可コードがありません")
	}

	profile, err := s.resolveProfile(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.directory.GetOrCreate(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	sess, err := s.createSession(ctx, profile, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// resolveProfile は認可コードをプロフィールに解決する。
// モックログインが有効な場合のみMockCodeを特別扱いする。
func (s *Service) resolveProfile(ctx context.Context, code string) (*model.Profile, error) {
	if s.config.MockLogin && code == MockCode {
		p := mockProfile
		return &p, nil
	}

	profile, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		var upstream *feishu.UpstreamAuthError
		if errors.As(err, &upstream) {
			slog.Warn("identity provider rejected login",
				slog.Int("status", upstream.StatusCode),
				slog.Int("code", upstream.Code),
				slog.String("msg", upstream.Msg),
			)
			return nil, model.NewUpstreamAuthError(upstream.Code, upstream.Msg)
		}
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return profile, nil
}

// createSession はプロフィールとユーザーレコードからセッションを作成し保存する。
func (s *Service) createSession(ctx context.Context, profile *model.Profile, user *model.User) (*model.Session, error) {
	id, err := session.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	sess := &model.Session{
		ID: id,
		Data: model.SessionData{
			UserInfo: model.UserInfo{
				OpenID:      profile.OpenID,
				Name:        profile.Name,
				AvatarURL:   profile.AvatarURL,
				Level:       user.Level,
				CreatedAt:   user.CreatedAt,
				LastLoginAt: user.LastLoginAt,
			},
		},
		CreatedAt: now,
	}
	if s.config.SessionMaxAge > 0 {
		sess.ExpiresAt = now.Add(time.Duration(s.config.SessionMaxAge) * time.Second)
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return sess, nil
}
