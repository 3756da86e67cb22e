package tokenstore

import (
	"path/filepath"
	"testing"
)

// store はテスト対象のストアが満たすインターフェース。
type store interface {
	Token() (string, bool)
	SetToken(token string) error
	RemoveToken() error
}

// newTestSQLite はテスト用のインメモリSQLiteストアを生成する。
func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStores は各ストアの保存・取得・削除を検証する。
func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) store{
		"Memory": func(_ *testing.T) store { return NewMemory("") },
		"SQLite": func(t *testing.T) store { return newTestSQLite(t) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			t.Run("初期状態ではトークンが存在しないこと", func(t *testing.T) {
				t.Parallel()

				s := newStore(t)
				if token, ok := s.Token(); ok || token != "" {
					t.Errorf("Token() = (%q, %v), want (\"\", false)", token, ok)
				}
			})

			t.Run("保存したトークンを取得できること", func(t *testing.T) {
				t.Parallel()

				s := newStore(t)
				if err := s.SetToken("token-1"); err != nil {
					t.Fatalf("SetToken()でエラーが発生: %v", err)
				}
				token, ok := s.Token()
				if !ok || token != "token-1" {
					t.Errorf("Token() = (%q, %v), want (%q, true)", token, ok, "token-1")
				}
			})

			t.Run("再保存で上書きされること", func(t *testing.T) {
				t.Parallel()

				s := newStore(t)
				if err := s.SetToken("old"); err != nil {
					t.Fatalf("SetToken()でエラーが発生: %v", err)
				}
				if err := s.SetToken("new"); err != nil {
					t.Fatalf("SetToken()でエラーが発生: %v", err)
				}
				if token, _ := s.Token(); token != "new" {
					t.Errorf("Token() = %q, want %q", token, "new")
				}
			})

			t.Run("削除後はトークンが存在しないこと", func(t *testing.T) {
				t.Parallel()

				s := newStore(t)
				if err := s.SetToken("token-2"); err != nil {
					t.Fatalf("SetToken()でエラーが発生: %v", err)
				}
				if err := s.RemoveToken(); err != nil {
					t.Fatalf("RemoveToken()でエラーが発生: %v", err)
				}
				if _, ok := s.Token(); ok {
					t.Error("削除後もトークンが存在する")
				}
			})

			t.Run("トークンがない状態で削除してもエラーにならないこと", func(t *testing.T) {
				t.Parallel()

				s := newStore(t)
				if err := s.RemoveToken(); err != nil {
					t.Errorf("RemoveToken()でエラーが発生: %v", err)
				}
			})
		})
	}
}

// TestSQLitePersistence はSQLiteストアがファイルに永続化されることを検証する。
func TestSQLitePersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.db")

	s1, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
	}
	if err := s1.SetToken("persisted-token"); err != nil {
		t.Fatalf("SetToken()でエラーが発生: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close()でエラーが発生: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
	}
	t.Cleanup(func() { s2.Close() })

	token, ok := s2.Token()
	if !ok || token != "persisted-token" {
		t.Errorf("Token() = (%q, %v), want (%q, true)", token, ok, "persisted-token")
	}
}

// TestNewMemory は初期トークン付きで生成できることを検証する。
func TestNewMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory("initial")
	if token, ok := m.Token(); !ok || token != "initial" {
		t.Errorf("Token() = (%q, %v), want (%q, true)", token, ok, "initial")
	}
}
