// Package tokenstore は認証トークンの保存先を提供する。
//
// プロセス内で保持するMemoryと、SQLiteに永続化するSQLiteの2種類がある。
// いずれもrequest.TokenStoreを満たし、ログイン処理から保存・削除を行う。
package tokenstore
