package tokenstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// スキーマ定義。トークンは常に1行だけ保持する。
const schema = `
CREATE TABLE IF NOT EXISTS tokens (
    -- 常に1となる主キー
    id INTEGER PRIMARY KEY CHECK (id = 1),
    -- 認証トークン
    token TEXT NOT NULL,
    -- 保存日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLite はSQLiteデータベースにトークンを永続化するストア。
type SQLite struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// OpenSQLite は指定パスのSQLiteデータベースを開き、スキーマを適用する。
// ":memory:" を指定するとインメモリデータベースを使用する。
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため接続を1本に制限する
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite は既存のデータベース接続からストアを生成する。
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Token は保存されているトークンを返す。
// 読み取りに失敗した場合はログに記録し、トークンなしとして扱う。
func (s *SQLite) Token() (string, bool) {
	var token string
	err := s.db.QueryRow("SELECT token FROM tokens WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		log.Printf("[TokenStore] トークンの読み取りに失敗: %v", err)
		return "", false
	}
	return token, token != ""
}

// SetToken はトークンを保存する。既存のトークンは上書きする。
func (s *SQLite) SetToken(token string) error {
	_, err := s.db.Exec(`
		INSERT INTO tokens (id, token) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = datetime('now')
	`, token)
	if err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// RemoveToken はトークンを削除する。
func (s *SQLite) RemoveToken() error {
	if _, err := s.db.Exec("DELETE FROM tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("トークンの削除に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *SQLite) Close() error {
	return s.db.Close()
}
