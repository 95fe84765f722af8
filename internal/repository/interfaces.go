// Package repository はデータ永続化のインターフェースと実装を定義する。
package repository

import (
	"context"

	"github.com/hitoshi/usercrud/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// すべての操作は1つのパラメータ化SQLを実行し、ドライバのエラーは
// *model.StoreError にラップして返す。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを返す。
	// 姓名のいずれかが空の場合は書き込みを行わずに *model.ValidationError を返す。
	Create(ctx context.Context, firstName, lastName string) (int64, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// List は全ユーザーをID昇順で返す。0件の場合は空スライスを返す。
	List(ctx context.Context) ([]*model.User, error)

	// Update は指定IDのユーザーの姓名を更新する。
	// 影響行数がちょうど1の場合のみtrueを返す。
	Update(ctx context.Context, id int64, firstName, lastName string) (bool, error)

	// Delete は指定IDのユーザーを物理削除する。
	// 影響行数がちょうど1の場合のみtrueを返す。
	Delete(ctx context.Context, id int64) (bool, error)

	// Count はユーザーの総数を返す。
	Count(ctx context.Context) (int64, error)
}
