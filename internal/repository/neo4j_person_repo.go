package repository

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/hm-community/hmnet/internal/model"
)

// personReturn はPersonノードの全フィールドを返すRETURN句。
const personReturn = `elementId(p) AS id, p.name AS name, p.nickname AS nickname,
       p.gender AS gender, p.birthday AS birthday, p.phone AS phone,
       p.email AS email, p.city AS city, p.resources AS resources, p.needs AS needs,
       p.created_at AS created_at, p.updated_at AS updated_at`

// Neo4jPersonRepo はNeo4jを使用した連絡先ディレクトリリポジトリ。
// 各操作はクエリ1回の間だけセッションを開き、すべての経路で解放する。
type Neo4jPersonRepo struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jPersonRepo はNeo4jPersonRepoを生成する。
func NewNeo4jPersonRepo(driver neo4j.DriverWithContext) *Neo4jPersonRepo {
	return &Neo4jPersonRepo{driver: driver}
}

// List はPersonをcreated_at降順で最大limit件取得する。
func (r *Neo4jPersonRepo) List(ctx context.Context, limit int) ([]*model.Person, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	people, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]*model.Person, error) {
		result, err := tx.Run(ctx,
			`MATCH (p:Person)
			 RETURN `+personReturn+`
			 ORDER BY p.created_at DESC
			 LIMIT $limit`,
			map[string]any{"limit": limit},
		)
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		people := make([]*model.Person, 0, len(records))
		for _, record := range records {
			people = append(people, personFromValues(record.AsMap()))
		}
		return people, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	return people, nil
}

// FindByID は指定IDのPersonを取得する。見つからない場合はnilを返す。
func (r *Neo4jPersonRepo) FindByID(ctx context.Context, id string) (*model.Person, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	person, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (*model.Person, error) {
		result, err := tx.Run(ctx,
			`MATCH (p:Person)
			 WHERE elementId(p) = $id
			 RETURN `+personReturn,
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return singlePerson(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find person: %w", err)
	}

	return person, nil
}

// Create はPersonノードを作成し、ストアが割り当てたIDを含む完全なレコードを返す。
func (r *Neo4jPersonRepo) Create(ctx context.Context, p *model.Person) (*model.Person, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	created, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*model.Person, error) {
		result, err := tx.Run(ctx,
			`CREATE (p:Person {
			     name: $name,
			     nickname: $nickname,
			     gender: $gender,
			     birthday: $birthday,
			     phone: $phone,
			     email: $email,
			     city: $city,
			     resources: $resources,
			     needs: $needs,
			     created_at: $now,
			     updated_at: $now
			 })
			 RETURN `+personReturn,
			personParams(p, p.CreatedAt),
		)
		if err != nil {
			return nil, err
		}
		return singlePerson(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	return created, nil
}

// Update は指定IDのPersonの全フィールドを置き換える（idとcreated_atを除く）。
// 見つからない場合はnilを返す。
func (r *Neo4jPersonRepo) Update(ctx context.Context, id string, p *model.Person) (*model.Person, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := personParams(p, p.UpdatedAt)
	params["id"] = id

	updated, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (*model.Person, error) {
		result, err := tx.Run(ctx,
			`MATCH (p:Person)
			 WHERE elementId(p) = $id
			 SET p.name = $name,
			     p.nickname = $nickname,
			     p.gender = $gender,
			     p.birthday = $birthday,
			     p.phone = $phone,
			     p.email = $email,
			     p.city = $city,
			     p.resources = $resources,
			     p.needs = $needs,
			     p.updated_at = $now
			 RETURN `+personReturn,
			params,
		)
		if err != nil {
			return nil, err
		}
		return singlePerson(ctx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	return updated, nil
}

// Delete は指定IDのPersonを物理削除する。削除が行われたかどうかを返す。
func (r *Neo4jPersonRepo) Delete(ctx context.Context, id string) (bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	deleted, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (int64, error) {
		result, err := tx.Run(ctx,
			`MATCH (p:Person)
			 WHERE elementId(p) = $id
			 DETACH DELETE p
			 RETURN count(p) AS deleted`,
			map[string]any{"id": id},
		)
		if err != nil {
			return 0, err
		}

		record, err := result.Single(ctx)
		if err != nil {
			return 0, err
		}
		return intValue(record.AsMap(), "deleted"), nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete person: %w", err)
	}

	return deleted > 0, nil
}

// Count は全Person数を返す。
func (r *Neo4jPersonRepo) Count(ctx context.Context) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	total, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) (int64, error) {
		result, err := tx.Run(ctx,
			`MATCH (p:Person) RETURN count(p) AS total_people`,
			nil,
		)
		if err != nil {
			return 0, err
		}

		record, err := result.Single(ctx)
		if err != nil {
			return 0, err
		}
		return intValue(record.AsMap(), "total_people"), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}

	return total, nil
}

// personParams はPersonのフィールドをクエリパラメータに変換する。
func personParams(p *model.Person, now string) map[string]any {
	return map[string]any{
		"name":      p.Name,
		"nickname":  optParam(p.Nickname),
		"gender":    optParam(p.Gender),
		"birthday":  optParam(p.Birthday),
		"phone":     optParam(p.Phone),
		"email":     optParam(p.Email),
		"city":      optParam(p.City),
		"resources": optParam(p.Resources),
		"needs":     optParam(p.Needs),
		"now":       now,
	}
}

// singlePerson は結果から高々1件のPersonを取り出す。0件の場合はnilを返す。
func singlePerson(ctx context.Context, result neo4j.ResultWithContext) (*model.Person, error) {
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return personFromValues(records[0].AsMap()), nil
}

// compile-time interface check
var _ PersonRepository = (*Neo4jPersonRepo)(nil)
