package request

import (
	"errors"
	"net/http"
)

// Messages はステータスコードからユーザー向けメッセージへの対応表。
type Messages map[int]string

// DefaultMessages は起動時に一度だけ構築される標準の対応表を返す。
func DefaultMessages() Messages {
	return Messages{
		http.StatusBadRequest:              "リクエストが不正です",
		http.StatusUnauthorized:            "認証されていません。再度ログインしてください",
		http.StatusForbidden:               "アクセスが拒否されました",
		http.StatusNotFound:                "リクエスト先が見つかりません",
		http.StatusRequestTimeout:          "リクエストがタイムアウトしました",
		http.StatusInternalServerError:     "サーバー内部エラーが発生しました",
		http.StatusNotImplemented:          "サービスが実装されていません",
		http.StatusBadGateway:              "ゲートウェイエラーが発生しました",
		http.StatusServiceUnavailable:      "サービスが利用できません",
		http.StatusGatewayTimeout:          "ゲートウェイがタイムアウトしました",
		http.StatusHTTPVersionNotSupported: "HTTPバージョンがサポートされていません",
	}
}

// messageFor はエラーに対して表示するメッセージを決定する。
// アプリケーションエラーはエンベロープのmessageをそのまま使う。
// それ以外は対応表、エラー自身のメッセージ、汎用メッセージの順に探す。
func (m Messages) messageFor(err error) string {
	var ae *ApplicationError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if status := StatusOf(err); status != 0 {
		if msg, ok := m[status]; ok && msg != "" {
			return msg
		}
	}
	if msg := embeddedMessage(err); msg != "" {
		return msg
	}
	return MessageNetworkError
}
