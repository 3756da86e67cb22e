package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// CodeOK は処理成功を表すエンベロープのコード。
	CodeOK = 0
	// CodeUnauthorized はトークンが無効または期限切れであることを表すエンベロープのコード。
	CodeUnauthorized = 401
	// CodeInternal はサーバー内部エラーを表すエンベロープのコード。
	CodeInternal = 500
)

// RespondOK はdataを成功のエンベロープで返す。
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    CodeOK,
		"message": "",
		"data":    data,
	})
}

// RespondError はエラーのエンベロープをHTTPステータス200で返す。
// 業務エラーはHTTPステータスではなくcodeで区別する。
func RespondError(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, gin.H{
		"code":    code,
		"message": message,
		"data":    nil,
	})
}

// abortWithEnvelope は後続のハンドラを実行せずにエンベロープを返す。
func abortWithEnvelope(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"data":    nil,
	})
}
