package tokenstore

import "sync"

// Memory はプロセス内でトークンを保持するストア。
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory は初期トークンを持つストアを生成する。空文字列の場合はトークンなし。
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Token は保持しているトークンを返す。
func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// SetToken はトークンを保存する。
func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// RemoveToken はトークンを削除する。
func (m *Memory) RemoveToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
