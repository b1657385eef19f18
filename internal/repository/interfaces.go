// Package repository はグラフストアへの永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hm-community/hmnet/internal/model"
)

// PersonRepository は連絡先ディレクトリの永続化インターフェース。
type PersonRepository interface {
	// List はPersonをcreated_at降順で最大limit件取得する。
	List(ctx context.Context, limit int) ([]*model.Person, error)

	// FindByID は指定IDのPersonを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Person, error)

	// Create はPersonノードを作成し、ストアが割り当てたIDを含む完全なレコードを返す。
	Create(ctx context.Context, p *model.Person) (*model.Person, error)

	// Update は指定IDのPersonの全フィールドを置き換える（idとcreated_atを除く）。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, p *model.Person) (*model.Person, error)

	// Delete は指定IDのPersonを物理削除する。削除が行われたかどうかを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// Count は全Person数を返す。
	Count(ctx context.Context) (int64, error)
}

// UserRepository は認証済みアカウントの永続化インターフェース。
// すべての読み取りは非削除ユーザー（deletedが未設定またはfalse）に限定される。
type UserRepository interface {
	// FindByOpenID はopen_idでユーザーを検索する。見つからない場合はnilを返す。
	FindByOpenID(ctx context.Context, openID string) (*model.User, error)

	// CreateWithWelcomeMessage はユーザーとウェルカムメッセージを
	// 単一の書き込みトランザクションで作成し、作成されたユーザーを返す。
	// 部分適用（ユーザーのみ作成されメッセージがない状態）は発生しない。
	CreateWithWelcomeMessage(ctx context.Context, name, openID, now, welcomeText string) (*model.User, error)

	// TouchLastLogin はlast_login_atを更新し、更新後のレコードを返す。
	// 見つからない場合はnilを返す。
	TouchLastLogin(ctx context.Context, openID, now string) (*model.User, error)
}

// InboxRepository は受信箱メッセージの永続化インターフェース。
type InboxRepository interface {
	// ListByOpenID はユーザーの受信箱メッセージをdate降順で最大limit件取得する。
	ListByOpenID(ctx context.Context, openID string, limit int) ([]*model.InboxMessage, error)

	// MarkRead は未読メッセージを既読に遷移させ、更新後のメッセージを返す。
	// メッセージが存在しない、このユーザーの所有でない、既に既読のいずれの場合もnilを返す。
	MarkRead(ctx context.Context, openID, messageID string) (*model.InboxMessage, error)
}
