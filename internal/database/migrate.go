package database

import (
	"embed"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/neo4j"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.cypher
var migrationsFS embed.FS

// MigrateURL はNeo4j接続URIと認証情報からmigrate用の接続URLを組み立てる。
func MigrateURL(uri, username, password string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse graph store URI: %w", err)
	}

	// migrateのneo4jドライバーはneo4jスキームとURL内の認証情報を要求する
	u.Scheme = "neo4j"
	u.User = url.UserPassword(username, password)

	return u.String(), nil
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// databaseURLはMigrateURLで組み立てた接続URLを指定する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
// マイグレーション0001はUser.open_idの一意性制約を作成し、
// 同時初回ログインによる重複アカウント作成をストア側で防ぐ。
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
