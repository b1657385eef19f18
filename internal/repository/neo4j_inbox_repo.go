package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hm-community/hmnet/internal/model"
)

// messageReturn はInboxMessageノードの全フィールドを返すRETURN句。
const messageReturn = `elementId(m) AS id, m.date AS date, m.text AS text,
       m.read AS read, m.message_type AS message_type`

// Neo4jInboxRepo はNeo4jを使用した受信箱リポジトリ。
// メッセージは所有ユーザーからのHAS_MESSAGE関係を辿ってのみ参照する。
type Neo4jInboxRepo struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jInboxRepo はNeo4jInboxRepoを生成する。
func NewNeo4jInboxRepo(driver neo4j.DriverWithContext) *Neo4jInboxRepo {
	return &Neo4jInboxRepo{driver: driver}
}

// ListByOpenID はユーザーの受信箱メッセージをdate降順で最大limit件取得する。
func (r *Neo4jInboxRepo) ListByOpenID(ctx context.Context, openID string, limit int) ([]*model.InboxMessage, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	messages, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]*model.InboxMessage, error) {
		result, err := tx.Run(ctx,
			`MATCH (u:User {open_id: $open_id})-[:HAS_MESSAGE]->(m:InboxMessage)
			 RETURN `+messageReturn+`
			 ORDER BY m.date DESC
			 LIMIT $limit`,
			map[string]any{"open_id": openID, "limit": limit},
		)
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		messages := make([]*model.InboxMessage, 0, len(records))
		for _, record := range records {
			messages = append(messages, messageFromValues(record.AsMap()))
		}
		return messages, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox messages: %w", err)
	}

	return messages, nil
}

// MarkRead は未読メッセージを既読に遷移させ、更新後のメッセージを返す。
// MATCH条件にread = falseを含めるため、存在しない・他ユーザー所有・既読済みの
// いずれの場合もマッチせずnilが返る。既読への遷移は1回きりで、逆遷移はない。
func (r *Neo4jInboxRepo) MarkRead(ctx context.Context, openID, messageID string) (*model.InboxMessage, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	message, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*model.InboxMessage, error) {
		result, err := tx.Run(ctx,
			`MATCH (u:User {open_id: $open_id})-[:HAS_MESSAGE]->(m:InboxMessage)
			 WHERE elementId(m) = $message_id AND m.read = false
			 SET m.read = true
			 RETURN `+messageReturn,
			map[string]any{"open_id": openID, "message_id": messageID},
		)
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		return messageFromValues(records[0].AsMap()), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}

	return message, nil
}

// compile-time interface check
var _ InboxRepository = (*Neo4jInboxRepo)(nil)
