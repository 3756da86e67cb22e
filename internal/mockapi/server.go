package mockapi

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/cscsb/v3-admin-vite/pkg/middleware"
	"github.com/cscsb/v3-admin-vite/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config は開発用バックエンドの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// DBPath はSQLiteデータベースのパス。
	DBPath string
	// JWTSecret はJWT署名用の秘密鍵。
	JWTSecret string
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration
	// FrontendURL はCORSで許可する管理画面のオリジン。カンマ区切りで複数指定できる。
	FrontendURL string
}

// Server は開発用バックエンドのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はユーザーとテーブルデータの保存先。
	store *store
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// tokenTTL は発行するトークンの有効期間。
	tokenTTL time.Duration
}

// NewServer は新しい開発用バックエンドを生成する。
// SQLiteデータベースを開き、マイグレーションを適用する。
func NewServer(cfg Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	// SQLiteへの書き込みは直列化されるため接続を1本に制限する
	sqlDB.SetMaxOpenConns(1)

	s, err := newServer(context.Background(), sqlDB, cfg, gin.Logger())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// newServer は既存のデータベース接続からサーバーを生成する。
// extraに指定したミドルウェアはルーティングより前に適用される。
func newServer(ctx context.Context, sqlDB *sql.DB, cfg Config, extra ...gin.HandlerFunc) (*Server, error) {
	if _, err := migration.Run(ctx, sqlDB, migrations, "migrations"); err != nil {
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(extra...)
	if cfg.FrontendURL != "" {
		router.Use(middleware.CORS(strings.Split(cfg.FrontendURL, ",")))
	}

	s := &Server{
		router:    router,
		port:      cfg.Port,
		store:     &store{db: sqlDB},
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
	}
	s.setupRoutes()
	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はサーバーのHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		// ログイン（認証不要）
		api.POST("/users/login", s.handleLogin())
	}

	authed := s.router.Group("/api/v1")
	authed.Use(middleware.JWTAuth(s.jwtSecret))
	{
		authed.GET("/users/info", s.handleUserInfo())

		table := authed.Group("/table")
		{
			table.GET("", s.handleListTable())
			table.POST("", s.handleCreateTable())
			table.PUT("/:id", s.handleUpdateTable())
			table.DELETE("/:id", s.handleDeleteTable())
			table.GET("/export", s.handleExportTable())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		middleware.RespondOK(c, gin.H{"status": "ok", "service": "mockapi"})
	})
}
