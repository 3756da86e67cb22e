package request

import (
	"os"
	"strings"
	"time"
)

// DefaultTimeout はリクエストごとのデフォルトタイムアウト（5000ms）。
const DefaultTimeout = 5000 * time.Millisecond

// defaultBaseURL は環境変数BASE_APIが未設定の場合に使用するベースURL。
const defaultBaseURL = "http://localhost:3333/api/v1"

// Config はクライアント生成時に渡す設定。
type Config struct {
	// BaseURL は相対URLの解決に使用するAPIのベースURL。
	BaseURL string
	// Timeout はリクエストごとのデフォルトタイムアウト。0の場合はDefaultTimeoutを使用する。
	Timeout time.Duration
}

// LoadConfig は環境変数から設定を読み込む。
// BASE_API にAPIのベースURLを指定する。
func LoadConfig() Config {
	return Config{
		BaseURL: getEnvOr("BASE_API", defaultBaseURL),
		Timeout: DefaultTimeout,
	}
}

// withDefaults は未設定の項目をデフォルト値で補った設定を返す。
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	return c
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
