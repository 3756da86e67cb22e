package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// errNotFound は対象の行が存在しないことを表す。
var errNotFound = errors.New("対象が見つかりません")

// errDuplicate はユーザー名が既に登録されていることを表す。
var errDuplicate = errors.New("ユーザー名が重複しています")

// user はログイン可能なユーザー。
type user struct {
	Username string
	Password string
	Roles    []string
}

// tableRow はテーブル表示用の1行。
type tableRow struct {
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

// tableQuery はテーブルデータの検索条件。
type tableQuery struct {
	CurrentPage int
	Size        int
	Username    string
	Phone       string
}

// store はSQLiteに対するクエリをまとめたもの。
type store struct {
	db *sql.DB
}

// getUser はユーザー名からユーザーを取得する。
func (s *store) getUser(ctx context.Context, username string) (*user, error) {
	var u user
	var roles string
	err := s.db.QueryRowContext(ctx,
		"SELECT username, password, roles FROM users WHERE username = ?", username,
	).Scan(&u.Username, &u.Password, &roles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	u.Roles = splitRoles(roles)
	return &u, nil
}

// listRows は条件に一致する行のページと総件数を返す。
func (s *store) listRows(ctx context.Context, q tableQuery) ([]tableRow, int, error) {
	where := " WHERE username LIKE ? AND phone LIKE ?"
	args := []any{"%" + q.Username + "%", "%" + q.Phone + "%"}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM table_rows"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("件数の取得に失敗: %w", err)
	}

	offset := (q.CurrentPage - 1) * q.Size
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, roles, phone, email, status, created_at FROM table_rows"+where+
			" ORDER BY created_at DESC, username ASC LIMIT ? OFFSET ?",
		append(args, q.Size, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := make([]tableRow, 0, max(q.Size, 0))
	for rows.Next() {
		var r tableRow
		var status int
		if err := rows.Scan(&r.ID, &r.Username, &r.Roles, &r.Phone, &r.Email, &status, &r.CreateTime); err != nil {
			return nil, 0, fmt.Errorf("行の読み取りに失敗: %w", err)
		}
		r.Status = status != 0
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("一覧の読み取りに失敗: %w", err)
	}
	return list, total, nil
}

// allRows は全行を一覧と同じ順序で返す。
func (s *store) allRows(ctx context.Context) ([]tableRow, error) {
	list, _, err := s.listRows(ctx, tableQuery{CurrentPage: 1, Size: -1})
	return list, err
}

// insertRow は行を追加する。
func (s *store) insertRow(ctx context.Context, r tableRow) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO table_rows (id, username, roles, phone, email, status) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Username, r.Roles, r.Phone, r.Email, boolToInt(r.Status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return errDuplicate
		}
		return fmt.Errorf("行の追加に失敗: %w", err)
	}
	return nil
}

// updateRow は行を更新する。
func (s *store) updateRow(ctx context.Context, r tableRow) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE table_rows SET username = ?, roles = ?, phone = ?, email = ?, status = ? WHERE id = ?",
		r.Username, r.Roles, r.Phone, r.Email, boolToInt(r.Status), r.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return errDuplicate
		}
		return fmt.Errorf("行の更新に失敗: %w", err)
	}
	return requireAffected(res)
}

// deleteRow は行を削除する。
func (s *store) deleteRow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM table_rows WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("行の削除に失敗: %w", err)
	}
	return requireAffected(res)
}

// requireAffected は更新件数が0の場合にerrNotFoundを返す。
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return errNotFound
	}
	return nil
}

func splitRoles(roles string) []string {
	if roles == "" {
		return []string{}
	}
	return strings.Split(roles, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
