// Package mockapi は管理画面の開発用バックエンドを提供する。
//
// すべてのエンドポイントが {code, message, data} のエンベロープで応答する。
// ログイン、ユーザー情報、テーブルデータのCRUDとCSVエクスポートを持ち、
// 無効なトークンに対してはHTTPステータス200でcode 401を返す。
// データはSQLiteに保存し、スキーマは埋め込みのマイグレーションで適用する。
package mockapi
