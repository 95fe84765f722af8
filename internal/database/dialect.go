package database

import (
	"fmt"
	"strconv"
)

// Dialect はSQL方言（プレースホルダ形式やRETURNING対応）を表す。
// 値はdatabase/sqlのドライバ名と一致する。
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect はDB_DRIVERの値からDialectを返す。
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case Postgres, MySQL, SQLite:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// DriverName はsql.Openに渡すドライバ名を返す。
func (d Dialect) DriverName() string { return string(d) }

// Placeholder はn番目（1始まり）のバインドパラメータ表記を返す。
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// SupportsReturning はINSERT ... RETURNINGで採番IDを取得すべきかを返す。
// lib/pqはLastInsertIdをサポートしないためPostgresのみtrue。
func (d Dialect) SupportsReturning() bool { return d == Postgres }
