package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cscsb/v3-admin-vite/pkg/request"
)

// TableRow はテーブルの1行。
type TableRow struct {
	// ID は行の一意識別子。
	ID string `json:"id"`
	// Username はユーザー名。
	Username string `json:"username"`
	// Roles はカンマ区切りのロール。
	Roles string `json:"roles"`
	// Phone は電話番号。
	Phone string `json:"phone"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Status は有効状態。
	Status bool `json:"status"`
	// CreateTime は作成日時。
	CreateTime string `json:"createTime"`
}

// TableQuery はテーブルデータの検索条件。
type TableQuery struct {
	// CurrentPage は1始まりのページ番号。0の場合は1ページ目。
	CurrentPage int
	// Size は1ページあたりの件数。0の場合はサーバーのデフォルト。
	Size int
	// Username はユーザー名の部分一致条件。
	Username string
	// Phone は電話番号の部分一致条件。
	Phone string
}

// params は検索条件をクエリパラメータに変換する。未設定の項目は含めない。
func (q TableQuery) params() map[string]string {
	p := map[string]string{}
	if q.CurrentPage > 0 {
		p["currentPage"] = strconv.Itoa(q.CurrentPage)
	}
	if q.Size > 0 {
		p["size"] = strconv.Itoa(q.Size)
	}
	if q.Username != "" {
		p["username"] = q.Username
	}
	if q.Phone != "" {
		p["phone"] = q.Phone
	}
	return p
}

// TableData はテーブルデータの1ページ分。
type TableData struct {
	// List はページ内の行。
	List []TableRow `json:"list"`
	// Total は条件に一致する総件数。
	Total int `json:"total"`
}

// TableRowInput はテーブルデータの追加・更新リクエストのボディ。
type TableRowInput struct {
	// Username はユーザー名。
	Username string `json:"username"`
	// Password は初期パスワード。追加時のみ必須。
	Password string `json:"password,omitempty"`
	// Roles はカンマ区切りのロール。
	Roles string `json:"roles"`
	// Phone は電話番号。
	Phone string `json:"phone"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Status は有効状態。nilの場合はサーバーのデフォルト。
	Status *bool `json:"status,omitempty"`
}

// CreateTableResponseData は追加成功時のdata。
type CreateTableResponseData struct {
	// ID は追加された行の識別子。
	ID string `json:"id"`
}

// GetTableData は検索条件に一致するテーブルデータを1ページ分取得する。
func GetTableData(ctx context.Context, c *request.Client, q TableQuery) (*request.Envelope[TableData], error) {
	return request.Request[TableData](ctx, c, request.Descriptor{
		URL:    "table",
		Params: q.params(),
	})
}

// CreateTableData はテーブルデータを追加する。
func CreateTableData(ctx context.Context, c *request.Client, in TableRowInput) (*request.Envelope[CreateTableResponseData], error) {
	return request.Request[CreateTableResponseData](ctx, c, request.Descriptor{
		Method: http.MethodPost,
		URL:    "table",
		Body:   in,
	})
}

// UpdateTableData は指定したIDのテーブルデータを更新する。
func UpdateTableData(ctx context.Context, c *request.Client, id string, in TableRowInput) (*request.Envelope[any], error) {
	return request.Request[any](ctx, c, request.Descriptor{
		Method: http.MethodPut,
		URL:    "table/" + url.PathEscape(id),
		Body:   in,
	})
}

// DeleteTableData は指定したIDのテーブルデータを削除する。
func DeleteTableData(ctx context.Context, c *request.Client, id string) (*request.Envelope[any], error) {
	return request.Request[any](ctx, c, request.Descriptor{
		Method: http.MethodDelete,
		URL:    "table/" + url.PathEscape(id),
	})
}

// ExportTableData はテーブルデータ全件をCSVとして取得する。
// レスポンスはエンベロープを経由せずそのまま返す。
func ExportTableData(ctx context.Context, c *request.Client) ([]byte, error) {
	return request.Download(ctx, c, request.Descriptor{
		URL:          "table/export",
		ResponseType: request.ResponseTypeBlob,
	})
}
