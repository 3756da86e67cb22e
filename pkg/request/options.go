package request

import "net/http"

// TokenStore は永続化された認証トークンを取得する。
// トークンが存在しない場合は第2戻り値にfalseを返す。
type TokenStore interface {
	Token() (string, bool)
}

// SessionStore は現在のユーザーセッションを破棄する。
type SessionStore interface {
	Logout()
}

// Notifier はユーザーに1行のエラーメッセージを表示する。
type Notifier interface {
	Error(message string)
}

// Option はクライアントの生成時に協調オブジェクトを設定する。
type Option interface{ apply(*Client) }

type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithTokenStore はAuthorizationヘッダーに使用するトークンの取得元を設定する。
func WithTokenStore(s TokenStore) Option {
	return optionFunc(func(c *Client) { c.tokens = s })
}

// WithSessionStore はセッション切れ時にログアウトさせるセッションを設定する。
func WithSessionStore(s SessionStore) Option {
	return optionFunc(func(c *Client) { c.session = s })
}

// WithNotifier はエラーメッセージの表示先を設定する。
func WithNotifier(n Notifier) Option {
	return optionFunc(func(c *Client) { c.notifier = n })
}

// WithReload はセッション切れでログアウトした後に呼び出す処理を設定する。
// ログイン画面への遷移などを行う。
func WithReload(fn func()) Option {
	return optionFunc(func(c *Client) { c.reload = fn })
}

// WithHTTPClient は送信に使用するHTTPクライアントを設定する。
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	})
}

// WithMessages はステータスコードとメッセージの対応表を置き換える。
func WithMessages(m Messages) Option {
	return optionFunc(func(c *Client) {
		if m != nil {
			c.messages = m
		}
	})
}
