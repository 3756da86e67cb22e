package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowAnyOrigin を許可オリジンに含めると、すべてのオリジンを許可する。
const AllowAnyOrigin = "*"

const (
	// corsAllowMethods は管理画面が使用するHTTPメソッド。
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	// corsAllowHeaders は共有クライアントが送信するリクエストヘッダー。
	corsAllowHeaders = "Authorization, Content-Type, X-Request-ID"
	// corsExposeHeaders はエクスポート時にファイル名を読み取るためのヘッダー。
	corsExposeHeaders = "Content-Disposition"
)

// CORS は管理画面のオリジンからのクロスオリジンリクエストを許可するGinミドルウェアを返す。
// 前後の空白は無視し、空文字列は読み飛ばす。
// Access-Control-Request-Methodを伴うOPTIONSリクエストはプリフライトとして204で応答する。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAny := false
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
			continue
		case AllowAnyOrigin:
			allowAny = true
		default:
			origins[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		origin := c.GetHeader("Origin")
		_, ok := origins[origin]
		if origin == "" || (!ok && !allowAny) {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
