package mockapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/cscsb/v3-admin-vite/pkg/middleware"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope はテストでレスポンスを読み取るためのエンベロープ。
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestServer はテスト用の開発用バックエンドをインメモリSQLiteで構築する。
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s, err := newServer(context.Background(), sqlDB, Config{JWTSecret: testJWTSecret, TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("サーバーの生成に失敗: %v", err)
	}
	return s
}

// doRequest はハンドラにリクエストを送り、レスポンスを返す。
func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("リクエストボディのエンコードに失敗: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// decode はレスポンスボディをエンベロープとして読み取る。
func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("レスポンスのデコードに失敗: %v (body=%s)", err, w.Body.String())
	}
	return env
}

// login はadminでログインしてトークンを返す。
func login(t *testing.T, s *Server) string {
	t.Helper()

	w := doRequest(t, s, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": "admin",
		"password": "12345678",
	})
	env := decode(t, w)
	if env.Code != 0 {
		t.Fatalf("ログインに失敗: code=%d message=%s", env.Code, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("トークンのデコードに失敗: %v", err)
	}
	return data.Token
}

// createRow はテーブルデータを追加してIDを返す。
func createRow(t *testing.T, s *Server, token, username, phone string) string {
	t.Helper()

	w := doRequest(t, s, http.MethodPost, "/api/v1/table", token, map[string]any{
		"username": username,
		"password": "secret",
		"roles":    "editor",
		"phone":    phone,
		"email":    username + "@example.com",
	})
	env := decode(t, w)
	if env.Code != 0 {
		t.Fatalf("追加に失敗: code=%d message=%s", env.Code, env.Message)
	}
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("IDのデコードに失敗: %v", err)
	}
	return data.ID
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	t.Run("正しい資格情報でトークンが発行されること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)

		claims, err := middleware.ParseJWT(testJWTSecret, token)
		if err != nil {
			t.Fatalf("発行されたトークンの検証に失敗: %v", err)
		}
		if claims.Username != "admin" {
			t.Errorf("Username = %q, want %q", claims.Username, "admin")
		}
	})

	t.Run("パスワードが誤っている場合にcode 10001が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"username": "admin",
			"password": "wrong",
		})
		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if env := decode(t, w); env.Code != codeLoginFailed {
			t.Errorf("code = %d, want %d", env.Code, codeLoginFailed)
		}
	})

	t.Run("存在しないユーザーの場合にcode 10001が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodPost, "/api/v1/users/login", "", map[string]string{
			"username": "nobody",
			"password": "12345678",
		})
		if env := decode(t, w); env.Code != codeLoginFailed {
			t.Errorf("code = %d, want %d", env.Code, codeLoginFailed)
		}
	})

	t.Run("必須項目が欠けている場合にcode 400が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "admin"})
		if env := decode(t, w); env.Code != codeInvalidRequest {
			t.Errorf("code = %d, want %d", env.Code, codeInvalidRequest)
		}
	})
}

func TestHandleUserInfo(t *testing.T) {
	t.Parallel()

	t.Run("ログイン中のユーザー名とロールが返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodGet, "/api/v1/users/info", login(t, s), nil)
		env := decode(t, w)
		if env.Code != 0 {
			t.Fatalf("code = %d, want 0", env.Code)
		}

		var info struct {
			Username string   `json:"username"`
			Roles    []string `json:"roles"`
		}
		if err := json.Unmarshal(env.Data, &info); err != nil {
			t.Fatalf("ユーザー情報のデコードに失敗: %v", err)
		}
		if info.Username != "admin" {
			t.Errorf("Username = %q, want %q", info.Username, "admin")
		}
		if len(info.Roles) != 1 || info.Roles[0] != "admin" {
			t.Errorf("Roles = %v, want [admin]", info.Roles)
		}
	})

	t.Run("期限切れトークンの場合にcode 401が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		expired, err := middleware.GenerateJWT(testJWTSecret, "admin", []string{"admin"}, time.Nanosecond)
		if err != nil {
			t.Fatalf("トークン生成に失敗: %v", err)
		}
		time.Sleep(10 * time.Millisecond)

		w := doRequest(t, s, http.MethodGet, "/api/v1/users/info", expired, nil)
		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if env := decode(t, w); env.Code != middleware.CodeUnauthorized {
			t.Errorf("code = %d, want %d", env.Code, middleware.CodeUnauthorized)
		}
	})
}

func TestTableCRUD(t *testing.T) {
	t.Parallel()

	t.Run("追加した行が一覧に含まれること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)
		createRow(t, s, token, "alice", "090-1111")
		createRow(t, s, token, "bob", "090-2222")

		w := doRequest(t, s, http.MethodGet, "/api/v1/table?currentPage=1&size=10", token, nil)
		env := decode(t, w)
		var data struct {
			List  []tableRow `json:"list"`
			Total int        `json:"total"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("一覧のデコードに失敗: %v", err)
		}
		if data.Total != 2 {
			t.Errorf("Total = %d, want 2", data.Total)
		}
		if len(data.List) != 2 {
			t.Errorf("len(List) = %d, want 2", len(data.List))
		}
	})

	t.Run("検索条件とページ指定が反映されること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)
		createRow(t, s, token, "alice", "090-1111")
		createRow(t, s, token, "alex", "090-2222")
		createRow(t, s, token, "bob", "080-3333")

		w := doRequest(t, s, http.MethodGet, "/api/v1/table?username=al&size=1&currentPage=2", token, nil)
		env := decode(t, w)
		var data struct {
			List  []tableRow `json:"list"`
			Total int        `json:"total"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("一覧のデコードに失敗: %v", err)
		}
		if data.Total != 2 {
			t.Errorf("Total = %d, want 2", data.Total)
		}
		if len(data.List) != 1 {
			t.Fatalf("len(List) = %d, want 1", len(data.List))
		}
		if !strings.HasPrefix(data.List[0].Username, "al") {
			t.Errorf("Username = %q, want al で始まる名前", data.List[0].Username)
		}
	})

	t.Run("不正なページ指定の場合にcode 400が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodGet, "/api/v1/table?size=abc", login(t, s), nil)
		if env := decode(t, w); env.Code != codeInvalidRequest {
			t.Errorf("code = %d, want %d", env.Code, codeInvalidRequest)
		}
	})

	t.Run("ユーザー名が重複する場合にcode 20001が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)
		createRow(t, s, token, "alice", "")

		w := doRequest(t, s, http.MethodPost, "/api/v1/table", token, map[string]any{
			"username": "alice",
			"password": "secret",
		})
		if env := decode(t, w); env.Code != codeDuplicate {
			t.Errorf("code = %d, want %d", env.Code, codeDuplicate)
		}
	})

	t.Run("行を更新できること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)
		id := createRow(t, s, token, "alice", "090-1111")

		w := doRequest(t, s, http.MethodPut, "/api/v1/table/"+id, token, map[string]any{
			"username": "alice",
			"phone":    "090-9999",
			"status":   false,
		})
		if env := decode(t, w); env.Code != 0 {
			t.Fatalf("code = %d, want 0 (message=%s)", env.Code, env.Message)
		}

		rows, err := s.store.allRows(context.Background())
		if err != nil {
			t.Fatalf("allRows()でエラーが発生: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("len(rows) = %d, want 1", len(rows))
		}
		if rows[0].Phone != "090-9999" {
			t.Errorf("Phone = %q, want %q", rows[0].Phone, "090-9999")
		}
		if rows[0].Status {
			t.Error("Status = true, want false")
		}
	})

	t.Run("存在しない行の更新と削除でcode 404が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)

		w := doRequest(t, s, http.MethodPut, "/api/v1/table/missing", token, map[string]any{"username": "x"})
		if env := decode(t, w); env.Code != codeNotFound {
			t.Errorf("更新 code = %d, want %d", env.Code, codeNotFound)
		}
		w = doRequest(t, s, http.MethodDelete, "/api/v1/table/missing", token, nil)
		if env := decode(t, w); env.Code != codeNotFound {
			t.Errorf("削除 code = %d, want %d", env.Code, codeNotFound)
		}
	})

	t.Run("削除した行が一覧から消えること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s)
		id := createRow(t, s, token, "alice", "")

		w := doRequest(t, s, http.MethodDelete, "/api/v1/table/"+id, token, nil)
		if env := decode(t, w); env.Code != 0 {
			t.Fatalf("code = %d, want 0", env.Code)
		}

		rows, err := s.store.allRows(context.Background())
		if err != nil {
			t.Fatalf("allRows()でエラーが発生: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("len(rows) = %d, want 0", len(rows))
		}
	})

	t.Run("トークンが無い場合にcode 401が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(t, s, http.MethodGet, "/api/v1/table", "", nil)
		if env := decode(t, w); env.Code != middleware.CodeUnauthorized {
			t.Errorf("code = %d, want %d", env.Code, middleware.CodeUnauthorized)
		}
	})
}

func TestHandleExportTable(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	token := login(t, s)
	createRow(t, s, token, "alice", "090-1111")

	w := doRequest(t, s, http.MethodGet, "/api/v1/table/export", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "table.csv") {
		t.Errorf("Content-Disposition = %q, want table.csv を含む", got)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("CSVの読み取りに失敗: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("レコード数 = %d, want 2", len(records))
	}
	if records[1][1] != "alice" {
		t.Errorf("username = %q, want %q", records[1][1], "alice")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if env := decode(t, w); env.Code != 0 {
		t.Errorf("code = %d, want 0", env.Code)
	}
}
