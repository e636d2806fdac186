package models

import "time"

// Config 構造体はプロセス全体の設定を保持します。
type Config struct {
	Port       string
	LogLevel   string
	CORSOrigin string

	MaxRooms    int
	RoomIdleTTL time.Duration

	JanitorSchedule string
	PurgeSchedule   string
	ResultRetention time.Duration
	RecentResults   int

	// PostgreSQL。DBHostが空の場合は使用しない
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	// Redis。RedisAddrが空の場合は使用しない
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func (c Config) PostgresEnabled() bool { return c.DBHost != "" }

func (c Config) RedisEnabled() bool { return c.RedisAddr != "" }
