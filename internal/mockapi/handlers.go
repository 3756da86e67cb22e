package mockapi

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cscsb/v3-admin-vite/pkg/middleware"
)

// エンベロープで返す業務エラーコード。
const (
	codeInvalidRequest = 400
	codeNotFound       = 404
	codeInternal       = 500
	codeLoginFailed    = 10001
	codeDuplicate      = 20001
)

// defaultPageSize はsize未指定時の1ページあたりの件数。
const defaultPageSize = 10

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Username はログインユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。
	Password string `json:"password" binding:"required"`
}

// handleLogin はユーザー名とパスワードを検証してJWTを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondError(c, codeInvalidRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}

		u, err := s.store.getUser(c.Request.Context(), req.Username)
		if errors.Is(err, errNotFound) || (err == nil && u.Password != req.Password) {
			middleware.RespondError(c, codeLoginFailed, "ユーザー名またはパスワードが正しくありません")
			return
		}
		if err != nil {
			log.Printf("ユーザー取得エラー: %v", err)
			middleware.RespondError(c, codeInternal, "ユーザーの取得に失敗しました")
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, u.Username, u.Roles, s.tokenTTL)
		if err != nil {
			log.Printf("JWT生成エラー: %v", err)
			middleware.RespondError(c, codeInternal, "トークン生成に失敗しました")
			return
		}

		middleware.RespondOK(c, gin.H{"token": token})
	}
}

// handleUserInfo はログイン中のユーザー情報を返すハンドラを返す。
func (s *Server) handleUserInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := middleware.GetRoles(c)
		if roles == nil {
			roles = []string{}
		}
		middleware.RespondOK(c, gin.H{
			"username": middleware.GetUsername(c),
			"roles":    roles,
		})
	}
}

// handleListTable はテーブルデータを検索条件とページ指定で返すハンドラを返す。
func (s *Server) handleListTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := queryInt(c, "currentPage", 1)
		if err != nil || page < 1 {
			middleware.RespondError(c, codeInvalidRequest, "currentPageが不正です")
			return
		}
		size, err := queryInt(c, "size", defaultPageSize)
		if err != nil || size < 1 {
			middleware.RespondError(c, codeInvalidRequest, "sizeが不正です")
			return
		}

		list, total, err := s.store.listRows(c.Request.Context(), tableQuery{
			CurrentPage: page,
			Size:        size,
			Username:    c.Query("username"),
			Phone:       c.Query("phone"),
		})
		if err != nil {
			log.Printf("テーブルデータ取得エラー: %v", err)
			middleware.RespondError(c, codeInternal, "テーブルデータの取得に失敗しました")
			return
		}

		middleware.RespondOK(c, gin.H{"list": list, "total": total})
	}
}

// tableRowRequest はテーブルデータの追加・更新リクエストのJSON構造。
type tableRowRequest struct {
	// Username はユーザー名。
	Username string `json:"username" binding:"required"`
	// Password は初期パスワード。追加時のみ必須。
	Password string `json:"password"`
	// Roles はカンマ区切りのロール。
	Roles string `json:"roles"`
	// Phone は電話番号。
	Phone string `json:"phone"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Status は有効状態。未指定の場合は有効。
	Status *bool `json:"status"`
}

// toRow はリクエストを行に変換する。
func (r tableRowRequest) toRow(id string) tableRow {
	status := true
	if r.Status != nil {
		status = *r.Status
	}
	return tableRow{
		ID:       id,
		Username: r.Username,
		Roles:    r.Roles,
		Phone:    r.Phone,
		Email:    r.Email,
		Status:   status,
	}
}

// handleCreateTable はテーブルデータを追加するハンドラを返す。
func (s *Server) handleCreateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tableRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondError(c, codeInvalidRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}
		if req.Password == "" {
			middleware.RespondError(c, codeInvalidRequest, "passwordが必要です")
			return
		}

		row := req.toRow(uuid.New().String())
		if err := s.store.insertRow(c.Request.Context(), row); err != nil {
			s.respondStoreError(c, err, "テーブルデータの追加に失敗しました")
			return
		}
		middleware.RespondOK(c, gin.H{"id": row.ID})
	}
}

// handleUpdateTable はテーブルデータを更新するハンドラを返す。
func (s *Server) handleUpdateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tableRowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.RespondError(c, codeInvalidRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}

		if err := s.store.updateRow(c.Request.Context(), req.toRow(c.Param("id"))); err != nil {
			s.respondStoreError(c, err, "テーブルデータの更新に失敗しました")
			return
		}
		middleware.RespondOK(c, nil)
	}
}

// handleDeleteTable はテーブルデータを削除するハンドラを返す。
func (s *Server) handleDeleteTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.deleteRow(c.Request.Context(), c.Param("id")); err != nil {
			s.respondStoreError(c, err, "テーブルデータの削除に失敗しました")
			return
		}
		middleware.RespondOK(c, nil)
	}
}

// handleExportTable はテーブルデータ全件をCSVファイルとして返すハンドラを返す。
// レスポンスはエンベロープではなくファイルそのもの。
func (s *Server) handleExportTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.store.allRows(c.Request.Context())
		if err != nil {
			log.Printf("テーブルデータ取得エラー: %v", err)
			middleware.RespondError(c, codeInternal, "テーブルデータの取得に失敗しました")
			return
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"id", "username", "roles", "phone", "email", "status", "createTime"})
		for _, r := range rows {
			_ = w.Write([]string{r.ID, r.Username, r.Roles, r.Phone, r.Email, strconv.FormatBool(r.Status), r.CreateTime})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			log.Printf("CSV書き込みエラー: %v", err)
			middleware.RespondError(c, codeInternal, "CSVの生成に失敗しました")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="table.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}

// respondStoreError はストアのエラーをエンベロープに変換して返す。
func (s *Server) respondStoreError(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, errNotFound):
		middleware.RespondError(c, codeNotFound, errNotFound.Error())
	case errors.Is(err, errDuplicate):
		middleware.RespondError(c, codeDuplicate, errDuplicate.Error())
	default:
		log.Printf("ストアエラー: %v", err)
		middleware.RespondError(c, codeInternal, internalMessage)
	}
}

// queryInt はクエリパラメータを整数として取得する。未指定の場合はdefを返す。
func queryInt(c *gin.Context, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
