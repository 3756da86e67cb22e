// Package session はログイン中のユーザーセッションを管理する。
//
// Store は request.SessionStore を満たし、共有クライアントがセッション切れを
// 検出した際にトークンとユーザー情報を破棄する。
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cscsb/v3-admin-vite/internal/api"
	"github.com/cscsb/v3-admin-vite/pkg/request"
)

// ErrNoToken はトークンが保存されていないことを表す。
var ErrNoToken = errors.New("トークンが保存されていません")

// TokenStore はトークンの取得・保存・削除を行う。
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	RemoveToken() error
}

// User はログイン中のユーザー。
type User struct {
	// Username はログインユーザー名。
	Username string
	// Roles はユーザーに付与されたロール。
	Roles []string
}

// Claims は保存されているトークンから読み取った情報。
type Claims struct {
	// Subject はトークンの主体（ユーザー名）。
	Subject string
	// ExpiresAt はトークンの有効期限。期限が無い場合はゼロ値。
	ExpiresAt time.Time
}

// Store はトークンとログイン中のユーザーを保持する。並行して使用できる。
type Store struct {
	tokens TokenStore

	mu   sync.RWMutex
	user *User
}

// NewStore は指定したトークンストアを使用するセッションを生成する。
func NewStore(tokens TokenStore) *Store {
	return &Store{tokens: tokens}
}

// Token は保存されているトークンを返す。
func (s *Store) Token() (string, bool) {
	return s.tokens.Token()
}

// Login はログインAPIを呼び出し、取得したトークンを保存する。
func (s *Store) Login(ctx context.Context, c *request.Client, username, password string) error {
	res, err := api.Login(ctx, c, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("ログインに失敗: %w", err)
	}
	if err := s.tokens.SetToken(res.Data.Token); err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	log.Printf("[Session] ログインしました: username=%s", username)
	return nil
}

// FetchUserInfo はログイン中のユーザー情報を取得して保持する。
func (s *Store) FetchUserInfo(ctx context.Context, c *request.Client) (*User, error) {
	res, err := api.GetUserInfo(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("ユーザー情報の取得に失敗: %w", err)
	}

	u := &User{Username: res.Data.Username, Roles: res.Data.Roles}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	return u, nil
}

// User はログイン中のユーザーを返す。未取得の場合はnilを返す。
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Logout はトークンを削除し、ユーザー情報を破棄する。
func (s *Store) Logout() {
	if err := s.tokens.RemoveToken(); err != nil {
		log.Printf("[Session] トークンの削除に失敗: %v", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	log.Printf("[Session] ログアウトしました")
}

// Claims は保存されているトークンを署名検証せずに読み取る。
// 署名の検証はバックエンドが行う。
func (s *Store) Claims() (*Claims, error) {
	token, ok := s.tokens.Token()
	if !ok {
		return nil, ErrNoToken
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, fmt.Errorf("トークンの解析に失敗: %w", err)
	}

	claims := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}
