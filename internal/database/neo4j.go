// Package database はグラフストア接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Open はNeo4jへの接続ドライバーを生成する。
// uriは接続URLを指定する（例: "neo4j://localhost:7687"）。
// ドライバーは接続プールを内包し、プロセス全体で1つを共有する。
// 生成時点では接続を試行しないため、実際の接続確認にはVerifyConnectivityを使用すること。
func Open(uri, username, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to open graph store: %w", err)
	}

	return driver, nil
}

// VerifyConnectivity はグラフストアへの疎通を確認する。
func VerifyConnectivity(ctx context.Context, driver neo4j.DriverWithContext) error {
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to graph store: %w", err)
	}
	return nil
}
