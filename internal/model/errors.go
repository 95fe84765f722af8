package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation は入力値の検証エラーを表す。ValidationErrorはこれにマッチする。
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound は指定IDのユーザーが存在しないことを表す。
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable はデータストアへの接続・認証・タイムアウト等の失敗を表す。
	// StoreErrorはこれにマッチする。
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError は必須フィールドの欠落または空値を表す。
type ValidationError struct {
	Field string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrValidation, e.Field)
}

// Is はerrors.Is(err, ErrValidation)を成立させる。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError はドライバ由来のエラーをラップする。
// 元のエラーはUnwrapで参照できるが、HTTP層へはそのまま出さない。
type StoreError struct {
	Op  string // 失敗した操作: create, find, list, update, delete, count
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

// Unwrap は元のドライバエラーを返す。
func (e *StoreError) Unwrap() error { return e.Err }

// Is はerrors.Is(err, ErrStoreUnavailable)を成立させる。
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// IsValidation はerrがValidationErrorかどうかを返す。
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound はerrがユーザー未検出かどうかを返す。
func IsNotFound(err error) bool { return errors.Is(err, ErrUserNotFound) }

// IsStoreUnavailable はerrがストア障害かどうかを返す。
func IsStoreUnavailable(err error) bool { return errors.Is(err, ErrStoreUnavailable) }
