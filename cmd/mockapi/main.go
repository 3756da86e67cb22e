// 管理画面の開発用バックエンドのエントリポイント。
// すべてのエンドポイントが {code, message, data} のエンベロープで応答する。
package main

import (
	"log"
	"os"

	"github.com/cscsb/v3-admin-vite/internal/mockapi"
	"github.com/cscsb/v3-admin-vite/pkg/middleware"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "mockapi.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	server, err := mockapi.NewServer(mockapi.Config{
		Port:        port,
		DBPath:      dbPath,
		JWTSecret:   jwtSecret,
		TokenTTL:    middleware.DefaultTokenTTL,
		FrontendURL: os.Getenv("FRONTEND_URL"),
	})
	if err != nil {
		log.Fatalf("開発用バックエンドの初期化に失敗: %v", err)
	}

	log.Printf("開発用バックエンドを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("開発用バックエンドの起動に失敗: %v", err)
	}
}
