// Package request は管理画面からバックエンドAPIを呼び出すための共有HTTPクライアントを提供する。
//
// 送信時には認証トークン（Authorization: Bearer）とデフォルトのContent-Typeを付与し、
// 呼び出し元の指定をデフォルト値にディープマージしてから送信する。
// 受信時にはバックエンド固有のエンベロープ {code, message, data} を解釈し、
// 成功・セッション切れ・アプリケーションエラー・通信エラーのいずれかに分類する。
//
// クライアントはプロセス内で一度だけ生成し、参照で呼び出し元に渡して共有する。
// リトライ、キャッシュ、ストリーミングは行わない。
package request
