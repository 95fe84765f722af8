// Package model はドメインモデルを定義する。
package model

import "strings"

// User はusersテーブルの1行を表す。
// IDはストアが採番し、作成後は変更されない。
type User struct {
	ID        int64
	FirstName string
	LastName  string
}

// ValidateNames は姓名がともに空でないことを検証する。
// 空白のみの値も空として扱う。
func ValidateNames(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" {
		return &ValidationError{Field: "first_name"}
	}
	if strings.TrimSpace(lastName) == "" {
		return &ValidationError{Field: "last_name"}
	}
	return nil
}
