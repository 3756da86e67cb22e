// Package api は管理画面が呼び出すバックエンドAPIを型付きの関数として提供する。
//
// すべての関数は共有クライアント request.Client を経由して送信するため、
// 認証ヘッダーの付与やエラー通知、セッション切れの処理はクライアントに任せる。
package api
