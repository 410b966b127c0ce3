package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Logger   Logger
	Worker   WorkerConfig
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	InputBucket   string
	OutputBucket  string
	PublicBaseURL string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

// WorkerConfig holds the transcoding policy knobs. Staleness window and retry
// bound are deployment policy, so they live here rather than in code.
type WorkerConfig struct {
	PollInterval    time.Duration
	StaleAfter      time.Duration
	MaxRetries      int
	SegmentDuration int
	MaxCPUUsage     float64
	Variants        []VariantConfig
}

type VariantConfig struct {
	Name    string
	Width   int
	Height  int
	Bitrate int
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = 10 * time.Second
	}
	if c.Worker.StaleAfter <= 0 {
		c.Worker.StaleAfter = 30 * time.Minute
	}
	if c.Worker.MaxRetries <= 0 {
		c.Worker.MaxRetries = 3
	}
	if c.Worker.SegmentDuration <= 0 {
		c.Worker.SegmentDuration = 6
	}
	return &c, nil
}
