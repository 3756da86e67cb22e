// Package notify はエラーメッセージをユーザーに表示する通知先を提供する。
package notify
