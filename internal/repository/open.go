package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqliteBusyTimeout 其他进程（reminder、seed）持有写锁时的等待时间，单位毫秒
const sqliteBusyTimeout = 5000

// OpenDB 按配置的驱动创建连接池并确认数据库可用
func OpenDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn := cfg.Database.DSN
	switch cfg.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动 %q", cfg.Database.Driver)
	}

	dbpool, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == DriverSQLite {
		// sqlite 同一时刻只允许一个写者，进程内串行化连接，
		// 并发创建同一周的周计划时才能稳定地得到唯一约束错误而不是 SQLITE_BUSY
		dbpool.SetMaxOpenConns(1)
		dbpool.SetMaxIdleConns(1)
	} else {
		dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}

	return dbpool, nil
}

// sqliteDSN 补上 busy_timeout 和 immediate 事务，DSN 中已经指定的不覆盖
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", sqliteBusyTimeout))
	}
	if !strings.Contains(dsn, "_txlock=") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}
