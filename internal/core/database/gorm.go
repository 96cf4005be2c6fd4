package database

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
)

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Writer             logger.Writer // 为空时写标准库 log
}

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch o.Driver {
	case "sqlite":
		// 纯 Go 驱动，无需 cgo；DSN 如 ./users.db 或 file::memory:?cache=shared
		dial = sqlite.Open(o.DSN)
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		log.Println("[db] final mysql dsn =", MaskDSN(dsn))
		dial = mysql.Open(dsn)
	default:
		return nil, ErrUnsupportedDriver
	}
	lvl := logger.Warn
	switch o.LogLevel {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	w := o.Writer
	if w == nil {
		w = log.New(log.Writer(), "\r\n", log.LstdFlags)
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.New(w, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true, // 唯一索引冲突 → gorm.ErrDuplicatedKey
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	db = db.
		Session(&gorm.Session{
			PrepareStmt:            true, // 预编译缓存，提高 QPS
			SkipDefaultTransaction: true, // 单条 insert/update 即原子单元
		})
	return db, nil
}

// MaskDSN user:pass@... → user:****@...
func MaskDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at > 0 {
		if colon := strings.Index(dsn[:at], ":"); colon > 0 {
			return dsn[:colon+1] + "****" + dsn[at:]
		}
	}
	return dsn
}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// URL 改写为 go-sql-driver DSN；
// 已是 user:pass@tcp(...) 形式的原样返回
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return in
	}
	u, err := url.Parse(in)
	if err != nil {
		return in // 交给驱动报错
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	q := u.Query()
	user = firstNonEmpty(userOverride, q.Get("user"), user)
	pass = firstNonEmpty(passOverride, q.Get("password"), pass)
	q.Del("user")
	q.Del("password")

	// JDBC 专用参数 → go-sql-driver
	if enc := q.Get("characterEncoding"); enc != "" && q.Get("charset") == "" {
		q.Set("charset", enc)
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		switch v {
		case "true", "1":
			q.Set("tls", "true")
		case "skip-verify", "preferred":
			q.Set("tls", v)
		default:
			q.Set("tls", "false")
		}
	}
	if tz := q.Get("serverTimezone"); tz != "" {
		q.Set("loc", tz)
	}
	for _, k := range []string{"characterEncoding", "useUnicode", "zeroDateTimeBehavior", "useSSL", "serverTimezone"} {
		q.Del(k)
	}

	// 时间统一按 UTC 读写
	for k, v := range map[string]string{"parseTime": "true", "charset": "utf8mb4", "loc": "UTC"} {
		if q.Get(k) == "" {
			q.Set(k, v)
		}
	}

	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

var ErrUnsupportedDriver = gorm.ErrInvalidDB
