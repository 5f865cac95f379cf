package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSeedAdminPassword is the development-only password of the seeded
// admin account. Production refuses to start with it.
const DefaultSeedAdminPassword = "Admin123!"

type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Server struct {
		Port         string        `mapstructure:"port"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"server"`

	DB struct {
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
		SSLMode    string `mapstructure:"sslmode"`
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"db"`

	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`

	Kafka struct {
		Broker  string `mapstructure:"broker"`
		GroupID string `mapstructure:"group_id"`
	} `mapstructure:"kafka"`

	JWT struct {
		Secret          string        `mapstructure:"secret"`
		Issuer          string        `mapstructure:"issuer"`
		Audience        string        `mapstructure:"audience"`
		AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
		RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	} `mapstructure:"jwt"`

	Seed struct {
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"seed"`

	Worker struct {
		OutboxInterval     time.Duration `mapstructure:"outbox_interval"`
		TokenSweepInterval time.Duration `mapstructure:"token_sweep_interval"`
	} `mapstructure:"worker"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) UsesDefaultSeedPassword() bool {
	return c.Seed.AdminPassword == DefaultSeedAdminPassword
}

// Load reads configuration from the environment and an optional file named
// by CONFIG_FILE. Environment keys are the upper-cased paths with dots
// replaced by underscores (jwt.secret -> JWT_SECRET).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The listen port keeps its conventional name.
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "sge")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_retries", 10)

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.group_id", "sge-audit")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "sge-api")
	v.SetDefault("jwt.audience", "sge-clients")
	v.SetDefault("jwt.access_token_ttl", 60*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)

	v.SetDefault("seed.admin_email", "admin@sge.com")
	v.SetDefault("seed.admin_password", DefaultSeedAdminPassword)

	v.SetDefault("worker.outbox_interval", 5*time.Second)
	v.SetDefault("worker.token_sweep_interval", time.Hour)
}

func validate(c *Config) error {
	if len(strings.TrimSpace(c.JWT.Secret)) < 32 {
		return errors.New("jwt.secret must be set and at least 32 characters long")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port must not be empty")
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		return errors.New("jwt token lifetimes must be positive")
	}
	if c.DB.MaxRetries < 1 {
		return errors.New("db.max_retries must be at least 1")
	}
	if c.IsProduction() && (c.UsesDefaultSeedPassword() || strings.TrimSpace(c.Seed.AdminPassword) == "") {
		return errors.New("seed.admin_password must be set explicitly in production")
	}
	if c.Worker.OutboxInterval <= 0 || c.Worker.TokenSweepInterval <= 0 {
		return errors.New("worker intervals must be positive")
	}
	return nil
}
