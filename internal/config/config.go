package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort  string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
	RateLimitRPS float64

	AMQPURL string

	// collaborator bounds
	OracleTimeout time.Duration
	KYCTimeout    time.Duration
	PriceMaxAge   time.Duration

	// liquidation keeper
	LiquidationSchedule string
	KeeperLiquidatorID  string
	KeeperLockTTL       time.Duration
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "ledger")
	v.SetDefault("MYSQL_USER", "ledger")
	v.SetDefault("MYSQL_PASS", "ledger")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("ORACLE_TIMEOUT", "2s")
	v.SetDefault("KYC_TIMEOUT", "2s")
	v.SetDefault("PRICE_MAX_AGE", "5m")
	v.SetDefault("LIQUIDATION_SCHEDULE", "@every 1m")
	v.SetDefault("KEEPER_LIQUIDATOR_ID", "ledger-keeper")
	v.SetDefault("KEEPER_LOCK_TTL", "50s")
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:  v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),

		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),
		RateLimitRPS: v.GetFloat64("RATE_LIMIT_RPS"),

		AMQPURL: v.GetString("AMQP_URL"),

		OracleTimeout: v.GetDuration("ORACLE_TIMEOUT"),
		KYCTimeout:    v.GetDuration("KYC_TIMEOUT"),
		PriceMaxAge:   v.GetDuration("PRICE_MAX_AGE"),

		LiquidationSchedule: v.GetString("LIQUIDATION_SCHEDULE"),
		KeeperLiquidatorID:  v.GetString("KEEPER_LIQUIDATOR_ID"),
		KeeperLockTTL:       v.GetDuration("KEEPER_LOCK_TTL"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.OracleTimeout <= 0 || c.KYCTimeout <= 0 {
		return errors.New("ORACLE_TIMEOUT and KYC_TIMEOUT must be positive")
	}
	if c.PriceMaxAge <= 0 {
		return errors.New("PRICE_MAX_AGE must be positive")
	}
	if c.LiquidationSchedule != "" {
		if _, err := cron.ParseStandard(c.LiquidationSchedule); err != nil {
			return fmt.Errorf("invalid LIQUIDATION_SCHEDULE %q: %w", c.LiquidationSchedule, err)
		}
		if c.KeeperLiquidatorID == "" {
			return errors.New("missing KEEPER_LIQUIDATOR_ID")
		}
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is needed by migrations; parseTime for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
