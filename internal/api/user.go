package api

import (
	"context"
	"net/http"

	"github.com/cscsb/v3-admin-vite/pkg/request"
)

// LoginRequest はログインリクエストのボディ。
type LoginRequest struct {
	// Username はログインユーザー名。
	Username string `json:"username"`
	// Password はパスワード。
	Password string `json:"password"`
}

// LoginResponseData はログイン成功時のdata。
type LoginResponseData struct {
	// Token は以降のリクエストで使用するJWT。
	Token string `json:"token"`
}

// UserInfo はログイン中のユーザー情報。
type UserInfo struct {
	// Username はログインユーザー名。
	Username string `json:"username"`
	// Roles はユーザーに付与されたロール。
	Roles []string `json:"roles"`
}

// Login はユーザー名とパスワードでログインし、トークンを取得する。
func Login(ctx context.Context, c *request.Client, req LoginRequest) (*request.Envelope[LoginResponseData], error) {
	return request.Request[LoginResponseData](ctx, c, request.Descriptor{
		Method: http.MethodPost,
		URL:    "users/login",
		Body:   req,
	})
}

// GetUserInfo はログイン中のユーザー情報を取得する。
func GetUserInfo(ctx context.Context, c *request.Client) (*request.Envelope[UserInfo], error) {
	return request.Request[UserInfo](ctx, c, request.Descriptor{
		URL: "users/info",
	})
}
