package config

import (
	"os"
	"strconv"
	"time"
)

// DBConfig PostgreSQL 配置。URL 非空时优先使用（托管数据库通常只给连接串）。
type DBConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	MaxConns       int32         `yaml:"max_conns"`
	MinConns       int32         `yaml:"min_conns"`
	MaxConnIdle    time.Duration `yaml:"max_conn_idle"`
	SlowQuery      time.Duration `yaml:"slow_query"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Configured 是否提供了足够的连接信息
func (c DBConfig) Configured() bool {
	return c.URL != "" || c.Host != ""
}

type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis 配置；URL（redis://...）优先于 Addr。
type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttl_hours"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// LogConfig 日志级别与输出格式（json / console）
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OverrideDBFromEnv DATABASE_URL 或 DB_* 覆盖
func OverrideDBFromEnv(cfg *DBConfig) {
	setString(&cfg.URL, "DATABASE_URL")
	setString(&cfg.Host, "DB_HOST")
	setInt(&cfg.Port, "DB_PORT")
	setString(&cfg.User, "DB_USER")
	setString(&cfg.Password, "DB_PASSWORD")
	setString(&cfg.Name, "DB_NAME")
	setString(&cfg.SSLMode, "DB_SSLMODE")
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.MaxConns = int32(n)
		}
	}
}

func OverrideMQFromEnv(cfg *MQConfig) {
	setString(&cfg.URL, "MQ_URL")
}

func OverrideRedisFromEnv(cfg *RedisConfig) {
	setString(&cfg.URL, "REDIS_URL")
	setString(&cfg.Addr, "REDIS_ADDR")
	setString(&cfg.Password, "REDIS_PASSWORD")
	setInt(&cfg.DB, "REDIS_DB")
}

func OverrideJWTFromEnv(cfg *JWTConfig) {
	setString(&cfg.Secret, "JWT_SECRET")
	setInt(&cfg.TTLHours, "JWT_TTL_HOURS")
}

// OverrideServerFromEnv PORT 为平台注入的裸端口号，SERVER_PORT 为完整监听地址
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = ":" + port
	}
	setString(&cfg.Port, "SERVER_PORT")
}

func OverrideLogFromEnv(cfg *LogConfig) {
	setString(&cfg.Level, "LOG_LEVEL")
	setString(&cfg.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
