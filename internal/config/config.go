package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Progress  ProgressConfig  `mapstructure:"progress"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ProgressConfig 进度引擎的策略参数，全部可配置而不是散落的硬编码
type ProgressConfig struct {
	// 等级阈值表，level = 满足 xp >= LevelThresholds[i] 的最大i
	LevelThresholds []int `mapstructure:"level_thresholds"`
	// 重复提交已完成内容时的经验折扣系数 [0,1]，0表示重复不给经验
	RepeatXPFactor float64 `mapstructure:"repeat_xp_factor"`
	// score_based策略未配置小节阈值时的默认及格线
	DefaultRequiredScore float64 `mapstructure:"default_required_score"`
	// 每日随机测验加成经验，每用户每日历日至多一次
	DailyQuizBonusXP int `mapstructure:"daily_quiz_bonus_xp"`
	// 乐观写冲突的最大重试次数
	ConflictRetries int `mapstructure:"conflict_retries"`

	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// SchedulerConfig 记忆调度的间隔参数
type SchedulerConfig struct {
	AgainDelayMinutes int     `mapstructure:"again_delay_minutes"` // Again后的重见间隔
	HardDelayMinutes  int     `mapstructure:"hard_delay_minutes"`  // Hard后的重见间隔
	EasyBonus         float64 `mapstructure:"easy_bonus"`          // Easy的间隔加成倍率，>1
	MinEaseFactor     float64 `mapstructure:"min_ease_factor"`
	MaxIntervalDays   int     `mapstructure:"max_interval_days"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNQUEST")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	setProgressDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if err := validateProgress(&cfg.Progress); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func setProgressDefaults() {
	viper.SetDefault("progress.level_thresholds", []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000})
	viper.SetDefault("progress.repeat_xp_factor", 0.0)
	viper.SetDefault("progress.default_required_score", 70.0)
	viper.SetDefault("progress.daily_quiz_bonus_xp", 30)
	viper.SetDefault("progress.conflict_retries", 3)
	viper.SetDefault("progress.scheduler.again_delay_minutes", 1)
	viper.SetDefault("progress.scheduler.hard_delay_minutes", 10)
	viper.SetDefault("progress.scheduler.easy_bonus", 1.3)
	viper.SetDefault("progress.scheduler.min_ease_factor", 1.3)
	viper.SetDefault("progress.scheduler.max_interval_days", 365)
}

func validateProgress(p *ProgressConfig) error {
	if len(p.LevelThresholds) == 0 || p.LevelThresholds[0] != 0 {
		return fmt.Errorf("progress.level_thresholds must start at 0")
	}
	for i := 1; i < len(p.LevelThresholds); i++ {
		if p.LevelThresholds[i] <= p.LevelThresholds[i-1] {
			return fmt.Errorf("progress.level_thresholds must be strictly increasing")
		}
	}
	if p.RepeatXPFactor < 0 || p.RepeatXPFactor > 1 {
		return fmt.Errorf("progress.repeat_xp_factor must be within [0,1]")
	}
	if p.Scheduler.EasyBonus <= 1 {
		return fmt.Errorf("progress.scheduler.easy_bonus must be greater than 1")
	}
	return nil
}
