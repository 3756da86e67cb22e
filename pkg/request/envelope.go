package request

import (
	"encoding/json"
	"math"
)

const (
	// CodeSuccess は処理成功を表すエンベロープのコード。
	CodeSuccess = 0
	// CodeTokenExpired はトークンの有効期限切れを表すエンベロープのコード。
	CodeTokenExpired = 401
)

// Envelope はバックエンドが返すレスポンスの共通構造。
// code が0なら成功、401ならセッション切れ、それ以外はアプリケーションエラーを表す。
type Envelope[T any] struct {
	// Code は処理結果を表す数値コード。
	Code int `json:"code"`
	// Message はエラー時のメッセージ。成功時は省略されることがある。
	Message string `json:"message,omitempty"`
	// Data は実際のペイロード。
	Data T `json:"data"`
}

// RawEnvelope はdataをデコードせずに保持するエンベロープ。
type RawEnvelope = Envelope[json.RawMessage]

// ResponseType はレスポンスボディの扱いを指定するヒント。
type ResponseType string

const (
	// ResponseTypeJSON はエンベロープとして解釈するJSONレスポンス（デフォルト）。
	ResponseTypeJSON ResponseType = "json"
	// ResponseTypeBlob はファイルダウンロード等のバイナリレスポンス。
	ResponseTypeBlob ResponseType = "blob"
	// ResponseTypeArrayBuffer はバイト列として扱うバイナリレスポンス。
	ResponseTypeArrayBuffer ResponseType = "arraybuffer"
)

// IsBinary はエンベロープの解釈を省略するバイナリ指定かどうかを返す。
func (t ResponseType) IsBinary() bool {
	return t == ResponseTypeBlob || t == ResponseTypeArrayBuffer
}

// Result は成功したリクエストの結果。
// JSON指定の場合はEnvelope、バイナリ指定の場合はRawに値が入る。
type Result struct {
	// Envelope はcodeが0のエンベロープ（受信したまま）。
	Envelope *RawEnvelope
	// Raw はバイナリ指定時のレスポンスボディ。
	Raw []byte
}

// decodeEnvelope はレスポンスボディをエンベロープとして解釈する。
// ボディが構造化されたJSON（オブジェクトまたは配列）でない場合はerrMalformedを、
// 32ビット整数に収まる数値のcodeフィールドを持たない場合はerrForeignを返す。
func decodeEnvelope(body []byte) (*RawEnvelope, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, errMalformed
	}

	var fields map[string]json.RawMessage
	switch value.(type) {
	case map[string]any:
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, errMalformed
		}
	case []any:
		return nil, errForeign
	default:
		return nil, errMalformed
	}

	rawCode, ok := fields["code"]
	if !ok || string(rawCode) == "null" {
		return nil, errForeign
	}
	var code float64
	if err := json.Unmarshal(rawCode, &code); err != nil || code != math.Trunc(code) {
		return nil, errForeign
	}
	if code < math.MinInt32 || code > math.MaxInt32 {
		return nil, errForeign
	}

	env := &RawEnvelope{Code: int(code), Data: fields["data"]}
	if rawMessage, ok := fields["message"]; ok {
		// messageが文字列でない場合は未設定として扱う
		_ = json.Unmarshal(rawMessage, &env.Message)
	}
	return env, nil
}
