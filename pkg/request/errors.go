package request

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// MessageMalformed はレスポンスボディが構造化データでない場合のメッセージ。
	MessageMalformed = "サーバーが返したデータの形式が不正です"
	// MessageForeign はエンベロープにcodeが含まれない場合のメッセージ。
	MessageForeign = "本システムのAPIではありません"
	// MessageNetworkError は表示すべきメッセージが他に見つからない場合の汎用メッセージ。
	MessageNetworkError = "ネットワークエラー"
	// MessageApplicationDefault はエンベロープにmessageがない場合のメッセージ。
	MessageApplicationDefault = "Error"
)

// ErrTokenExpired はバックエンドがcode 401でセッション切れを通知した場合に返るエラー。
var ErrTokenExpired = errors.New("トークンの有効期限が切れました")

var (
	errMalformed = errors.New("レスポンスボディが構造化データではない")
	errForeign   = errors.New("レスポンスに数値のcodeが含まれていない")
)

// TransportError はレスポンスボディを解釈する前に発生した通信エラーを表す。
// ネットワーク障害や2xx以外のHTTPステータスが該当する。
type TransportError struct {
	// Method はHTTPメソッド。
	Method string
	// URL はリクエスト先のURL。
	URL string
	// StatusCode はHTTPステータスコード。レスポンスを受信できなかった場合は0。
	StatusCode int
	// Message はエラーレスポンスのボディに含まれていたmessage。
	Message string
	// Cause は元になったエラー。
	Cause error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "http %d", e.StatusCode)
		if t := http.StatusText(e.StatusCode); t != "" {
			b.WriteString(" ")
			b.WriteString(t)
		}
	} else {
		b.WriteString("リクエストの送信に失敗")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// EnvelopeError はレスポンスボディが不正、またはエンベロープの必須フィールドが欠けている場合のエラー。
// StatusCode は常に合成された500となる。
type EnvelopeError struct {
	// StatusCode は合成されたステータスコード。
	StatusCode int
	// Message はユーザー向けのメッセージ。
	Message string
	// Cause は元になったエラー。
	Cause error
}

func (e *EnvelopeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("エンベロープが不正です (status=%d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("エンベロープが不正です (status=%d): %s", e.StatusCode, e.Message)
}

func (e *EnvelopeError) Unwrap() error { return e.Cause }

// ApplicationError はエンベロープが0と401以外のcodeを返した場合のエラー。
type ApplicationError struct {
	// Code はエンベロープのcode。エラー処理ではステータスコードとして扱う。
	Code int
	// Message はエンベロープのmessage。未設定の場合は "Error"。
	Message string
	// Envelope は受信したエンベロープ。
	Envelope *RawEnvelope
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("アプリケーションエラー: code=%d, message=%s", e.Code, e.Message)
}

// StatusOf はエラーに対応するステータスコードを返す。
// 通信エラーはHTTPステータス、エンベロープエラーは500、アプリケーションエラーはcodeを返す。
// 該当しない場合は0を返す。
func StatusOf(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	var ee *EnvelopeError
	if errors.As(err, &ee) {
		return ee.StatusCode
	}
	var ae *ApplicationError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return 0
}

// embeddedMessage はエラー自身が保持するユーザー向けメッセージを返す。
func embeddedMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Message
	}
	var ee *EnvelopeError
	if errors.As(err, &ee) {
		return ee.Message
	}
	var ae *ApplicationError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}
