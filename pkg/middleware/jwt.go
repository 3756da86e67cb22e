package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer は発行するJWTのissuer。
const Issuer = "v3-admin-mockapi"

// DefaultTokenTTL は発行するJWTのデフォルトの有効期間。
const DefaultTokenTTL = 24 * time.Hour

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// Username はログインユーザー名。
	Username string `json:"username"`
	// Roles はユーザーに付与されたロール。
	Roles []string `json:"roles"`
}

// contextKeyUsername はGinコンテキストにユーザー名を格納するためのキー。
const contextKeyUsername = "username"

// contextKeyRoles はGinコンテキストにロールを格納するためのキー。
const contextKeyRoles = "roles"

// GenerateJWT はユーザー情報から有効期間ttlのJWTトークンを生成する。
// ttlが0以下の場合はDefaultTokenTTLを使用する。
func GenerateJWT(secret, username string, roles []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
		Username: username,
		Roles:    roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT は署名と有効期限を検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("JWTトークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("JWTトークンが無効")
	}
	return claims, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// トークンが無い、または無効な場合はHTTPステータス200でcode 401のエンベロープを返す。
// 検証に成功した場合、コンテキストにユーザー名とロールを設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithEnvelope(c, http.StatusOK, CodeUnauthorized, "Authorizationヘッダーが必要です")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			abortWithEnvelope(c, http.StatusOK, CodeUnauthorized, "Bearer トークン形式が不正です")
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			abortWithEnvelope(c, http.StatusOK, CodeUnauthorized, "トークンが無効です")
			return
		}

		c.Set(contextKeyUsername, claims.Username)
		c.Set(contextKeyRoles, claims.Roles)
		c.Next()
	}
}

// GetUsername はGinコンテキストからユーザー名を取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetUsername(c *gin.Context) string {
	v, _ := c.Get(contextKeyUsername)
	if name, ok := v.(string); ok {
		return name
	}
	return ""
}

// GetRoles はGinコンテキストからロールを取得する。
func GetRoles(c *gin.Context) []string {
	v, _ := c.Get(contextKeyRoles)
	if roles, ok := v.([]string); ok {
		return roles
	}
	return nil
}
