package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Interactions InteractionsConfig `mapstructure:"interactions"`
}

// APIConfig configures the REST transport.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GatewayConfig configures the event-stream session.
type GatewayConfig struct {
	URL        string `mapstructure:"url"`
	Intents    uint64 `mapstructure:"intents"`
	ShardID    int    `mapstructure:"shard_id"`
	ShardCount int    `mapstructure:"shard_count"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// RedisConfig configures the optional shared state store.
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig configures the optional event fan-out producer.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// PostgresConfig configures the optional message archive.
type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// InteractionsConfig configures the inbound interaction webhook server.
type InteractionsConfig struct {
	Addr      string `mapstructure:"addr"`
	PublicKey string `mapstructure:"public_key"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	v.SetDefault("api.base_url", "https://discord.com/api/v10")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("gateway.url", "wss://gateway.discord.gg/?v=10&encoding=json")
	v.SetDefault("gateway.shard_count", 1)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}
