package migration

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// newTestDB はテスト用のインメモリSQLiteを生成する。
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRun はマイグレーションの適用を検証する。
func TestRun(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/000002_add_items.up.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"migrations/000001_init.up.sql":      {Data: []byte("CREATE TABLE users (id TEXT PRIMARY KEY);")},
		"migrations/000001_init.down.sql":    {Data: []byte("DROP TABLE users;")},
		"migrations/README.md":               {Data: []byte("ignored")},
		"migrations/invalid_name.up.sql":     {Data: []byte("SYNTAX ERROR")},
	}

	t.Run("未適用のマイグレーションがバージョン順に適用されること", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		count, err := Run(context.Background(), db, fsys, "migrations")
		if err != nil {
			t.Fatalf("Run()でエラーが発生: %v", err)
		}
		if count != 2 {
			t.Errorf("適用件数 = %d, want 2", count)
		}

		for _, table := range []string{"users", "items"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
			if err != nil {
				t.Errorf("テーブル %s が作成されていない: %v", table, err)
			}
		}
	})

	t.Run("2回目の実行では何も適用されないこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		if _, err := Run(context.Background(), db, fsys, "migrations"); err != nil {
			t.Fatalf("1回目のRun()でエラーが発生: %v", err)
		}
		count, err := Run(context.Background(), db, fsys, "migrations")
		if err != nil {
			t.Fatalf("2回目のRun()でエラーが発生: %v", err)
		}
		if count != 0 {
			t.Errorf("適用件数 = %d, want 0", count)
		}
	})

	t.Run("SQLが不正な場合にエラーを返しバージョンが記録されないこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		broken := fstest.MapFS{
			"m/000001_broken.up.sql": {Data: []byte("CREATE TABLE")},
		}
		if _, err := Run(context.Background(), db, broken, "m"); err == nil {
			t.Fatal("Run()がエラーを返すべき")
		}

		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
			t.Fatalf("バージョンの取得に失敗: %v", err)
		}
		if n != 0 {
			t.Errorf("記録されたバージョン数 = %d, want 0", n)
		}
	})

	t.Run("バージョンが重複している場合にエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		dup := fstest.MapFS{
			"m/000001_a.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"m/000001_b.up.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
		}
		if _, err := Run(context.Background(), db, dup, "m"); err == nil {
			t.Fatal("Run()がエラーを返すべき")
		}
	})

	t.Run("ディレクトリが存在しない場合にエラーを返すこと", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		if _, err := Run(context.Background(), db, fstest.MapFS{}, "missing"); err == nil {
			t.Fatal("Run()がエラーを返すべき")
		}
	})
}
