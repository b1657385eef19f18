package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hm-community/hmnet/internal/model"
)

// userReturn はUserノードの全フィールドを返すRETURN句。
const userReturn = `elementId(u) AS id, u.name AS name, u.open_id AS open_id,
       u.created_at AS created_at, u.last_login_at AS last_login_at,
       u.level AS level, u.deleted AS deleted`

// notDeleted は論理削除済みユーザーを除外するWHERE条件。
// 既存データにはdeletedプロパティ自体を持たないノードがあるためcoalesceで吸収する。
const notDeleted = `coalesce(u.deleted, false) = false`

// Neo4jUserRepo はNeo4jを使用したユーザーリポジトリ。
type Neo4jUserRepo struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jUserRepo はNeo4jUserRepoを生成する。
func NewNeo4jUserRepo(driver neo4j.DriverWithContext) *Neo4jUserRepo {
	return &Neo4jUserRepo{driver: driver}
}

// FindByOpenID はopen_idで非削除ユーザーを検索する。見つからない場合はnilを返す。
func (r *Neo4jUserRepo) FindByOpenID(ctx context.Context, openID string) (*model.User, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	user, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*model.User, error) {
		result, err := tx.Run(ctx,
			`MATCH (u:User {open_id: $open_id})
			 WHERE `+notDeleted+`
			 RETURN `+userReturn,
			map[string]any{"open_id": openID},
		)
		if err != nil {
			return nil, err
		}
		return singleUser(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// CreateWithWelcomeMessage はユーザーとウェルカムメッセージを単一の
// 書き込みトランザクションで作成する。ユーザーノード、メッセージノード、
// HAS_MESSAGE関係は1つのクエリ文で適用されるため部分適用は発生しない。
// open_idの一意性制約（マイグレーション0001）により、
// 同時初回ログインの片方は制約違反で失敗する。
func (r *Neo4jUserRepo) CreateWithWelcomeMessage(ctx context.Context, name, openID, now, welcomeText string) (*model.User, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	user, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*model.User, error) {
		result, err := tx.Run(ctx,
			`CREATE (u:User {
			     name: $name,
			     open_id: $open_id,
			     created_at: $now,
			     last_login_at: $now,
			     level: 1,
			     deleted: false
			 })
			 WITH u
			 CREATE (m:InboxMessage {
			     date: $now,
			     text: $welcome_text,
			     read: false,
			     message_type: 'System'
			 })
			 CREATE (u)-[:HAS_MESSAGE]->(m)
			 RETURN `+userReturn,
			map[string]any{
				"name":         name,
				"open_id":      openID,
				"now":          now,
				"welcome_text": welcomeText,
			},
		)
		if err != nil {
			return nil, err
		}
		return singleUser(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// TouchLastLogin はlast_login_atを更新し、更新を反映したレコードを返す。
// 見つからない場合はnilを返す。
func (r *Neo4jUserRepo) TouchLastLogin(ctx context.Context, openID, now string) (*model.User, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	user, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*model.User, error) {
		result, err := tx.Run(ctx,
			`MATCH (u:User {open_id: $open_id})
			 WHERE `+notDeleted+`
			 SET u.last_login_at = $now
			 RETURN `+userReturn,
			map[string]any{"open_id": openID, "now": now},
		)
		if err != nil {
			return nil, err
		}
		return singleUser(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return user, nil
}

// singleUser は結果から高々1件のUserを取り出す。0件の場合はnilを返す。
func singleUser(ctx context.Context, result neo4j.ResultWithContext) (*model.User, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return userFromValues(records[0].AsMap()), nil
}

// compile-time interface check
var _ UserRepository = (*Neo4jUserRepo)(nil)
