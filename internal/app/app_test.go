package app

import (
	"bytes"
	"testing"
)

func TestInit_MissingRequiredEnv(t *testing.T) {
	// 必須の環境変数を確実に未設定にする
	for _, key := range []string{
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD",
		"FEISHU_APP_ID", "FEISHU_APP_SECRET", "SESSION_SECRET",
	} {
		t.Setenv(key, "")
	}

	var buf bytes.Buffer
	if _, err := Init(&buf); err == nil {
		t.Error("Init should fail when required environment variables are missing")
	}
}

func TestInit_Success(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("NEO4J_USERNAME", "neo4j")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("FEISHU_APP_ID", "cli_test_app")
	t.Setenv("FEISHU_APP_SECRET", "app-secret")
	t.Setenv("SESSION_SECRET", "cookie-secret")

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if cfg.Neo4jURI != "neo4j://localhost:7687" {
		t.Errorf("Neo4jURI = %q", cfg.Neo4jURI)
	}
}
