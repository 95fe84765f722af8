package database

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hitoshi/usercrud/internal/config"
)

const (
	defaultPostgresPort = "5432"
	defaultMySQLPort    = "3306"
)

// Open は設定されたドライバでデータベース接続プールを開く。
// sql.Openは接続を試行しないため、実際の接続確認にはPingContextを使用すること。
func Open(cfg config.DBConfig) (*sql.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}

	dsn, err := DSN(cfg)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	// SQLiteはライターが1つのため、プール側で接続を1本に絞り書き込みを直列化する
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	return db, dialect, nil
}

// DSN はドライバごとの接続文字列を組み立てる。
func DSN(cfg config.DBConfig) (string, error) {
	switch Dialect(cfg.Driver) {
	case Postgres:
		return postgresURL(cfg), nil
	case MySQL:
		return mysqlConfig(cfg).FormatDSN(), nil
	case SQLite:
		return sqliteDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// MigrationURL はgolang-migrate用のデータベースURLを組み立てる。
func MigrationURL(cfg config.DBConfig) (string, error) {
	switch Dialect(cfg.Driver) {
	case Postgres:
		return postgresURL(cfg), nil
	case MySQL:
		mc := mysqlConfig(cfg)
		mc.MultiStatements = true
		return "mysql://" + mc.FormatDSN(), nil
	case SQLite:
		return "sqlite3://" + sqliteDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func postgresURL(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   hostPort(cfg.Host, cfg.Port, defaultPostgresPort),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func mysqlConfig(cfg config.DBConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = hostPort(cfg.Host, cfg.Port, defaultMySQLPort)
	mc.DBName = cfg.Name
	// RowsAffectedを変更行数ではなく一致行数にし、他の方言と揃える
	mc.ClientFoundRows = true
	return mc
}

// sqliteDSN はDB_NAMEをファイルパスとして扱う。
// 同時書き込み時のロック待ちのためbusy_timeoutを付与する。
func sqliteDSN(cfg config.DBConfig) string {
	return cfg.Name + "?_busy_timeout=5000"
}

// hostPort はhostにポートが含まれていなければportまたはdefaultPortを付与する。
func hostPort(host, port, defaultPort string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(host, port)
}
