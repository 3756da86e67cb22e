// 管理画面APIのコマンドラインクライアントのエントリポイント。
// 共有クライアントを経由してログインし、ユーザー情報とテーブルの1ページ目を表示する。
// トークンはSQLiteに保存し、次回の実行で再利用する。
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cscsb/v3-admin-vite/internal/api"
	"github.com/cscsb/v3-admin-vite/internal/session"
	"github.com/cscsb/v3-admin-vite/pkg/notify"
	"github.com/cscsb/v3-admin-vite/pkg/request"
	"github.com/cscsb/v3-admin-vite/pkg/tokenstore"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("[Admin] 実行に失敗: %v", err)
	}
}

func run(ctx context.Context) error {
	username := getEnvOr("ADMIN_USERNAME", "admin")
	password := getEnvOr("ADMIN_PASSWORD", "12345678")

	tokens, err := tokenstore.OpenSQLite(getEnvOr("TOKEN_DB", "admin-token.db"))
	if err != nil {
		return fmt.Errorf("トークンストアの初期化に失敗: %w", err)
	}
	defer func() { _ = tokens.Close() }()

	store := session.NewStore(tokens)
	client := request.New(
		request.LoadConfig(),
		request.WithTokenStore(store),
		request.WithSessionStore(store),
		request.WithNotifier(notify.Logger{}),
		request.WithReload(func() {
			log.Printf("[Admin] セッションが切れたためログインし直します")
		}),
	)

	if _, ok := store.Token(); !ok {
		if err := store.Login(ctx, client, username, password); err != nil {
			return err
		}
	}

	user, err := store.FetchUserInfo(ctx, client)
	if errors.Is(err, request.ErrTokenExpired) {
		if err := store.Login(ctx, client, username, password); err != nil {
			return err
		}
		user, err = store.FetchUserInfo(ctx, client)
	}
	if err != nil {
		return err
	}

	fmt.Printf("ユーザー: %s (ロール: %s)\n", user.Username, strings.Join(user.Roles, ", "))
	if claims, err := store.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("トークン有効期限: %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}

	page, err := api.GetTableData(ctx, client, api.TableQuery{CurrentPage: 1, Size: 10})
	if err != nil {
		return err
	}
	return printTable(page.Data)
}

// printTable はテーブルデータを整形して標準出力に書き出す。
func printTable(data api.TableData) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tユーザー名\tロール\t電話番号\tメール\t状態\t作成日時")
	for _, r := range data.List {
		status := "無効"
		if r.Status {
			status = "有効"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Username, r.Roles, r.Phone, r.Email, status, r.CreateTime)
	}
	fmt.Fprintf(w, "全%d件\n", data.Total)
	return w.Flush()
}

func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
