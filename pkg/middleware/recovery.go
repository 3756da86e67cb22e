package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// headerKeyRequestID は共有クライアントが付与するリクエスト追跡用ヘッダー。
const headerKeyRequestID = "X-Request-ID"

// messageInternal はパニック時にエンベロープで返すメッセージ。
const messageInternal = "内部サーバーエラーが発生しました"

// Recovery はハンドラのパニックをcode 500のエンベロープに変換するGinミドルウェアを返す。
// X-Request-IDはログに含め、レスポンスにもそのまま返す。
// レスポンスの書き込みが始まっていた場合は本文を追加せず処理を打ち切る。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestID := c.GetHeader(headerKeyRequestID)
			log.Printf("[Recovery] パニックから回復: method=%s, path=%s, request_id=%s, panic=%v",
				c.Request.Method, c.Request.URL.Path, requestID, r)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			if requestID != "" {
				c.Header(headerKeyRequestID, requestID)
			}
			abortWithEnvelope(c, http.StatusInternalServerError, CodeInternal, messageInternal)
		}()
		c.Next()
	}
}
