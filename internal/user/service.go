// Package user はユーザーディレクトリと受信箱のビジネスロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hm-community/hmnet/internal/model"
	"github.com/hm-community/hmnet/internal/repository"
)

// WelcomeMessageText は初回ログイン時に受信箱に入るウェルカムメッセージの本文。
const WelcomeMessageText = "Welcome! 👋 We're glad to have you in HM."

// InboxListLimit は受信箱一覧の最大件数。
const InboxListLimit = 20

// Service はユーザーディレクトリと受信箱の操作を提供する。
type Service struct {
	users repository.UserRepository
	inbox repository.InboxRepository

	// テスト用にオーバーライド可能な現在時刻
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, inbox repository.InboxRepository) *Service {
	return &Service{
		users: users,
		inbox: inbox,
		now:   time.Now,
	}
}

// GetOrCreate はopen_idでユーザーを確定する。
// 未登録の場合はlevel=1の新規ユーザーとウェルカムメッセージを原子的に作成する。
// 登録済みの場合はlast_login_atのみ更新し、更新を反映したレコードを返す。
// created_atを含む他のフィールドには一切触れない。
func (s *Service) GetOrCreate(ctx context.Context, profile *model.Profile) (*model.User, error) {
	if profile == nil || profile.OpenID == "" {
		return nil, model.NewValidationError("プロフィールにopen_idがありません")
	}

	now := model.Timestamp(s.now())

	existing, err := s.users.FindByOpenID(ctx, profile.OpenID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if existing == nil {
		created, err := s.users.CreateWithWelcomeMessage(ctx, profile.Name, profile.OpenID, now, WelcomeMessageText)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created",
			slog.String("user_id", created.ID),
			slog.String("open_id", created.OpenID),
		)
		return created, nil
	}

	updated, err := s.users.TouchLastLogin(ctx, profile.OpenID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	if updated == nil {
		// 存在確認と更新の間に削除された場合
		return nil, model.NewUserNotFoundError()
	}

	slog.Info("existing user logged in",
		slog.String("user_id", updated.ID),
		slog.String("open_id", updated.OpenID),
	)
	return updated, nil
}

// Me はopen_idで現在のユーザーを取得する。
func (s *Service) Me(ctx context.Context, openID string) (*model.User, error) {
	user, err := s.users.FindByOpenID(ctx, openID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// ListInbox はユーザーの受信箱メッセージを新しい順に最大20件返す。
func (s *Service) ListInbox(ctx context.Context, openID string) ([]*model.InboxMessage, error) {
	messages, err := s.inbox.ListByOpenID(ctx, openID, InboxListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	return messages, nil
}

// MarkRead は未読メッセージを既読にする。
// 存在しない、他ユーザー所有、既読済みのいずれの場合もNotFoundを返す。
// 同じメッセージへの2回目の呼び出しは成功ではなくNotFoundになる。
func (s *Service) MarkRead(ctx context.Context, openID, messageID string) (*model.InboxMessage, error) {
	message, err := s.inbox.MarkRead(ctx, openID, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}
	if message == nil {
		return nil, model.NewMessageNotFoundError(messageID)
	}
	return message, nil
}
