package db

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/smallbiznis/bizledger/internal/config"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Dialect picks the gorm driver for the configured store. Every dialect runs
// in UTC; sqlite also enforces foreign keys so referenced accounts and
// projects cannot be removed from under their transactions.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case TypePostgres:
		return postgres.Open(postgresDSN(cfg)), nil
	case TypeMySQL:
		return gormmysql.Open(mysqlDSN(cfg)), nil
	case TypeSQLite:
		return sqlite.Open(sqliteDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DBType)
	}
}

func postgresDSN(cfg config.Config) string {
	query := url.Values{}
	query.Set("sslmode", defaultString(cfg.DBSSLMode, "disable"))
	query.Set("TimeZone", "UTC")
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:     net.JoinHostPort(cfg.DBHost, defaultString(cfg.DBPort, "5432")),
		Path:     "/" + cfg.DBName,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

func mysqlDSN(cfg config.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, defaultString(cfg.DBPort, "3306"))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func sqliteDSN(cfg config.Config) string {
	path := defaultString(cfg.DBPath, "bizledger.db")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func defaultString(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}
