// Package config loads the service configuration from the environment
// (optionally seeded from a .env file) through viper.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string
	Port   string

	Database DatabaseConfig
	JWT      JWTConfig
	Lockout  LockoutConfig
	Seed     SeedConfig

	LowStockCron string
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string
	LogLevel string
}

// DSN returns DATABASE_URL when set, otherwise builds a key/value postgres DSN.
// For sqlite the database name doubles as the file path.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// LockoutConfig mirrors the identity defaults: five failures, five minutes.
type LockoutConfig struct {
	MaxFailedAccess int
	Duration        time.Duration
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	StaffEmail    string
	StaffPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "smart_inventory")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_SECRET", "your-super-secret-key-change-in-production")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("JWT_ISSUER", "smart-inventory")
	v.SetDefault("LOCKOUT_MAX_FAILED", 5)
	v.SetDefault("LOCKOUT_MINUTES", 5)
	v.SetDefault("LOW_STOCK_CRON", "@hourly")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@inventory.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "Admin123!")
	v.SetDefault("SEED_STAFF_EMAIL", "staff@example.com")
	v.SetDefault("SEED_STAFF_PASSWORD", "Staff@123")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv: v.GetString("APP_ENV"),
		Port:   v.GetString("PORT"),
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
			TimeZone: v.GetString("DB_TIMEZONE"),
			LogLevel: v.GetString("DB_LOG_LEVEL"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Lockout: LockoutConfig{
			MaxFailedAccess: v.GetInt("LOCKOUT_MAX_FAILED"),
			Duration:        time.Duration(v.GetInt("LOCKOUT_MINUTES")) * time.Minute,
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
			StaffEmail:    v.GetString("SEED_STAFF_EMAIL"),
			StaffPassword: v.GetString("SEED_STAFF_PASSWORD"),
		},
		LowStockCron: v.GetString("LOW_STOCK_CRON"),
	}

	if cfg.Lockout.MaxFailedAccess <= 0 {
		return nil, fmt.Errorf("LOCKOUT_MAX_FAILED must be positive, got %d", cfg.Lockout.MaxFailedAccess)
	}
	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	return cfg, nil
}
