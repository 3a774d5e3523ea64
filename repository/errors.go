package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNilID 汎用エラー 引数のIDがNilです
	ErrNilID = errors.New("nil id")
	// ErrNotFound 汎用エラー 見つかりません
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists 汎用エラー 既に存在しています
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotMember 汎用エラー チャンネルのメンバーではありません
	ErrNotMember = errors.New("not a member")
)

// ArgumentError 引数エラー
type ArgumentError struct {
	FieldName string
	Message   string
}

// Error errorインターフェイスの実装
func (e *ArgumentError) Error() string {
	if len(e.FieldName) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.FieldName, e.Message)
}

// ArgError 引数エラーを生成します
func ArgError(field, message string) *ArgumentError {
	return &ArgumentError{FieldName: field, Message: message}
}

// IsArgError 引数エラーかどうか
func IsArgError(err error) bool {
	var target *ArgumentError
	return errors.As(err, &target)
}
