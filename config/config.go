package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	Lock  LockConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
	Migrate  bool
}

// DSN is the keyword/value connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.TimeZone,
	)
}

// MigrationURL is the pgx5:// URL understood by golang-migrate.
func (c DBConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig only carries what is needed to verify access tokens.
// Tokens are issued by the identity service sharing the same secret.
type JWTConfig struct {
	Secret string
}

// LockConfig tunes the doctor+date booking lock.
type LockConfig struct {
	TTL  time.Duration
	Wait time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MIGRATE", true)

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional, the environment alone is enough
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	lockTTL, err := time.ParseDuration(viper.GetString("LOCK_TTL"))
	if err != nil {
		lockTTL = 10 * time.Second
	}

	lockWait, err := time.ParseDuration(viper.GetString("LOCK_WAIT"))
	if err != nil {
		lockWait = 3 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			TimeZone: viper.GetString("DB_TIMEZONE"),
			Migrate:  viper.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Lock: LockConfig{
			TTL:  lockTTL,
			Wait: lockWait,
		},
	}

	return config, nil
}
