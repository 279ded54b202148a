package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"researchhub/internal/completion"
	"researchhub/internal/mail"
	"researchhub/internal/scholar"
	"researchhub/internal/storage"
	"researchhub/internal/worker"
	"researchhub/pkg/config"
)

type ServerConfig struct {
	config.ServerConfig `yaml:",inline"`
	CORSOrigins         []string      `yaml:"cors_origins"`
	ShutdownTimeout     time.Duration `yaml:"shutdown_timeout"`
	RoadmapLockTTL      time.Duration `yaml:"roadmap_lock_ttl"`
}

type WorkerConfig struct {
	worker.Config `yaml:",inline"`
	Queue         string        `yaml:"queue"`
	RetryTTL      time.Duration `yaml:"retry_ttl"`
}

type Config struct {
	Server  ServerConfig       `yaml:"server"`
	DB      config.DBConfig    `yaml:"db"`
	Redis   config.RedisConfig `yaml:"redis"`
	MQ      config.MQConfig    `yaml:"mq"`
	JWT     config.JWTConfig   `yaml:"jwt"`
	Log     config.LogConfig   `yaml:"log"`
	LLM     completion.Config  `yaml:"llm"`
	Scholar scholar.Config     `yaml:"scholar"`
	Mail    mail.Config        `yaml:"mail"`
	Storage storage.Config     `yaml:"storage"`
	Worker  WorkerConfig       `yaml:"worker"`
}

// Load reads config/<env>.yaml over config/base.yaml and applies
// environment overrides.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	var cfg Config
	if err := config.Decode(env, configDir, &cfg); err != nil {
		return nil, fmt.Errorf("load config (env=%s): %w", env, err)
	}

	clearUnresolved(&cfg)
	config.OverrideServerFromEnv(&cfg.Server.ServerConfig)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideLogFromEnv(&cfg.Log)
	overrideSecretsFromEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// clearUnresolved blanks ${VAR} placeholders that neither secrets.env nor
// the environment filled in.
func clearUnresolved(cfg *Config) {
	for _, f := range []*string{
		&cfg.DB.URL, &cfg.DB.Host, &cfg.DB.Password,
		&cfg.Redis.URL, &cfg.Redis.Addr, &cfg.Redis.Password,
		&cfg.MQ.URL, &cfg.JWT.Secret,
		&cfg.LLM.APIKey, &cfg.Scholar.APIKey, &cfg.Mail.APIKey,
		&cfg.Storage.Bucket, &cfg.Storage.CredentialsFile,
	} {
		if strings.HasPrefix(*f, "${") && strings.HasSuffix(*f, "}") {
			*f = ""
		}
	}
}

func overrideSecretsFromEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.Scholar.APIKey = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Mail.APIKey = v
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("STORAGE_EMULATOR_HOST"); v != "" {
		cfg.Storage.EmulatorHost = v
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "jwt.secret")
	}
	if !c.DB.Configured() {
		missing = append(missing, "db.host or db.url")
	}
	if c.MQ.URL == "" {
		missing = append(missing, "mq.url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// TokenTTL is the JWT lifetime, defaulting to one day.
func (c *Config) TokenTTL() time.Duration {
	if c.JWT.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWT.TTLHours) * time.Hour
}
