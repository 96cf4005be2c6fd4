package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int   // 单请求超时（透传到 DB 查询）
	MaxBodyBytes      int64 // 请求体上限
	MaxInFlight       int64 // 并发处理上限
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type FileLog struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  FileLog
}

// Redis Addr 为空则不启用缓存
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttlSec"`
}

type DB struct {
	Driver             string // sqlite | mysql | postgres
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App   App
	Log   Log
	DB    DB
	Redis Redis `mapstructure:"redis"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "users-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.maxBodyBytes", 1<<20)
	v.SetDefault("app.http.maxInFlight", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "./users.db")
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("redis.ttlSec", 300)
}

// LoadE 读取 YAML，并允许 APP_ 前缀环境变量覆盖（APP_DB_DSN → db.dsn）
func LoadE(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := LoadE(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
