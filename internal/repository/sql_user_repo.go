package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/usercrud/internal/database"
	"github.com/hitoshi/usercrud/internal/model"
)

// userQueries は方言ごとに組み立てたSQL文を保持する。
// 値はすべてバインドパラメータで渡し、文字列連結は行わない。
type userQueries struct {
	insert   string
	findByID string
	list     string
	update   string
	delete   string
	count    string
}

func newUserQueries(d database.Dialect) userQueries {
	p := d.Placeholder
	q := userQueries{
		insert:   fmt.Sprintf(`INSERT INTO users (fname, lname) VALUES (%s, %s)`, p(1), p(2)),
		findByID: fmt.Sprintf(`SELECT id, fname, lname FROM users WHERE id = %s`, p(1)),
		list:     `SELECT id, fname, lname FROM users ORDER BY id ASC`,
		update:   fmt.Sprintf(`UPDATE users SET fname = %s, lname = %s WHERE id = %s`, p(1), p(2), p(3)),
		delete:   fmt.Sprintf(`DELETE FROM users WHERE id = %s`, p(1)),
		count:    `SELECT COUNT(*) FROM users`,
	}
	if d.SupportsReturning() {
		q.insert += ` RETURNING id`
	}
	return q
}

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
// 各操作はプールから専用コネクションを借り、すべての終了経路で返却する。
type SQLUserRepo struct {
	db           *sql.DB
	dialect      database.Dialect
	queryTimeout time.Duration
	q            userQueries
}

// NewSQLUserRepo はSQLUserRepoを生成する。
// queryTimeoutが正の場合、呼び出し元のcontextに期限がなければ各操作に適用する。
func NewSQLUserRepo(db *sql.DB, dialect database.Dialect, queryTimeout time.Duration) *SQLUserRepo {
	return &SQLUserRepo{
		db:           db,
		dialect:      dialect,
		queryTimeout: queryTimeout,
		q:            newUserQueries(dialect),
	}
}

// Create はユーザーを作成し、採番されたIDを返す。
func (r *SQLUserRepo) Create(ctx context.Context, firstName, lastName string) (int64, error) {
	if err := model.ValidateNames(firstName, lastName); err != nil {
		return 0, err
	}

	var id int64
	err := r.withConn(ctx, "create", func(ctx context.Context, conn *sql.Conn) error {
		if r.dialect.SupportsReturning() {
			return conn.QueryRowContext(ctx, r.q.insert, firstName, lastName).Scan(&id)
		}

		result, err := conn.ExecContext(ctx, r.q.insert, firstName, lastName)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	return id, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := r.withConn(ctx, "find", func(ctx context.Context, conn *sql.Conn) error {
		u := &model.User{}
		err := conn.QueryRowContext(ctx, r.q.findByID, id).Scan(&u.ID, &u.FirstName, &u.LastName)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// List は全ユーザーをID昇順で返す。
func (r *SQLUserRepo) List(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := r.withConn(ctx, "list", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.q.list)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u := &model.User{}
			if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Update は指定IDのユーザーの姓名を更新する。IDは変更しない。
func (r *SQLUserRepo) Update(ctx context.Context, id int64, firstName, lastName string) (bool, error) {
	if err := model.ValidateNames(firstName, lastName); err != nil {
		return false, err
	}

	var affected int64
	err := r.withConn(ctx, "update", func(ctx context.Context, conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.q.update, firstName, lastName, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	return affected == 1, nil
}

// Delete は指定IDのユーザーを物理削除する。
func (r *SQLUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.withConn(ctx, "delete", func(ctx context.Context, conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, r.q.delete, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return affected == 1, nil
}

// Count はユーザーの総数を返す。
func (r *SQLUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.withConn(ctx, "count", func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, r.q.count).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// withConn はプールからコネクションを取得してfnを実行し、必ず返却する。
// fnが返したエラーとコネクション取得の失敗は *model.StoreError にラップする。
func (r *SQLUserRepo) withConn(ctx context.Context, op string, fn func(ctx context.Context, conn *sql.Conn) error) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return &model.StoreError{Op: op, Err: err}
	}
	defer conn.Close()

	if err := fn(ctx, conn); err != nil {
		return &model.StoreError{Op: op, Err: err}
	}
	return nil
}

func (r *SQLUserRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
