package request

import (
	"net/http"
	"strings"
	"time"
)

// Descriptor は1回のリクエストの内容を表す。
// 未設定のフィールドはクライアントのデフォルト値で補われる。
type Descriptor struct {
	// Method はHTTPメソッド。未設定の場合はGET。
	Method string
	// BaseURL は相対URLの解決に使用するベースURL。
	BaseURL string
	// URL はリクエスト先。絶対URLの場合はBaseURLを無視する。
	URL string
	// Params はクエリパラメータ。
	Params map[string]string
	// Headers はリクエストヘッダー。
	Headers map[string]string
	// Body はJSONとして送信するリクエストボディ。
	Body any
	// ResponseType はレスポンスボディの扱い。未設定の場合はjson。
	ResponseType ResponseType
	// Timeout はリクエストのタイムアウト。
	Timeout time.Duration
}

// Merge はデフォルト値に呼び出し元の指定をディープマージした結果を返す。
// スカラー値は設定されている場合に呼び出し元が優先され、
// ヘッダーは名前の大文字・小文字を区別せず、クエリパラメータはそのままキー単位でマージされる。
// ボディは双方がJSONオブジェクトの場合のみ再帰的にマージし、それ以外は呼び出し元で置き換える。
// 引数のマップは変更しない。
func Merge(defaults, override Descriptor) Descriptor {
	merged := defaults
	if override.Method != "" {
		merged.Method = override.Method
	}
	if override.BaseURL != "" {
		merged.BaseURL = override.BaseURL
	}
	if override.URL != "" {
		merged.URL = override.URL
	}
	if override.ResponseType != "" {
		merged.ResponseType = override.ResponseType
	}
	if override.Timeout > 0 {
		merged.Timeout = override.Timeout
	}
	merged.Params = mergeStrings(defaults.Params, override.Params)
	merged.Headers = mergeHeaders(defaults.Headers, override.Headers)
	merged.Body = mergeBody(defaults.Body, override.Body)
	return merged
}

// mergeStrings は2つのマップをキー単位でマージした新しいマップを返す。
func mergeStrings(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// mergeHeaders はヘッダー名の大文字・小文字を区別せずにマージした新しいマップを返す。
// 同じヘッダーが両方にある場合は呼び出し元のキーと値だけを残す。
func mergeHeaders(base, override map[string]string) map[string]string {
	if base == nil && override == nil {
		return nil
	}
	merged := make(map[string]string, len(base)+len(override))
	keys := make(map[string]string, len(base)+len(override))
	set := func(k, v string) {
		canonical := http.CanonicalHeaderKey(k)
		if prev, ok := keys[canonical]; ok {
			delete(merged, prev)
		}
		keys[canonical] = k
		merged[k] = v
	}
	for k, v := range base {
		set(k, v)
	}
	for k, v := range override {
		set(k, v)
	}
	return merged
}

// mergeBody はボディをマージする。
func mergeBody(base, override any) any {
	if override == nil {
		return base
	}
	baseMap, ok := base.(map[string]any)
	if !ok {
		return override
	}
	overrideMap, ok := override.(map[string]any)
	if !ok {
		return override
	}

	merged := make(map[string]any, len(baseMap)+len(overrideMap))
	for k, v := range baseMap {
		merged[k] = v
	}
	for k, v := range overrideMap {
		if v == nil {
			merged[k] = nil
			continue
		}
		merged[k] = mergeBody(merged[k], v)
	}
	return merged
}

// method は送信に使用するHTTPメソッドを返す。
func (d Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(d.Method)
}

// hasBody はメソッドがリクエストボディを伴うかどうかを返す。
func (d Descriptor) hasBody() bool {
	switch d.method() {
	case http.MethodGet, http.MethodHead:
		return false
	}
	return d.Body != nil
}
