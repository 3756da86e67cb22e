// Package middleware はエンベロープ形式で応答するGinベースのHTTP APIの共通ミドルウェアを提供する。
//
// JWT認証トークンの発行と検証、パニックリカバリ、CORS設定を含む。
// エラー時もHTTPボディは常に {code, message, data} のエンベロープとなる。
package middleware
