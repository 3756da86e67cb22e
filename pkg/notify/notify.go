package notify

import (
	"log"
	"sync"
)

// Logger は通知メッセージを標準ログに出力する通知先。
// CLIなど画面を持たない環境で使用する。
type Logger struct{}

// Error はエラーメッセージをログに出力する。
func (Logger) Error(message string) {
	log.Printf("[Notify] %s", message)
}

// Recorder は表示されたメッセージを記録する通知先。
// 複数のゴルーチンから同時に使用できる。
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Error はエラーメッセージを記録する。
func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages は記録されたメッセージのコピーを記録順に返す。
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Len は記録されたメッセージの件数を返す。
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
