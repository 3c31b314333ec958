package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"app_port"`

	DBDriver   string `mapstructure:"db_driver"`
	SQLitePath string `mapstructure:"sqlite_path"`

	MySQLHost string `mapstructure:"mysql_host"`
	MySQLPort string `mapstructure:"mysql_port"`
	MySQLDB   string `mapstructure:"mysql_db"`
	MySQLUser string `mapstructure:"mysql_user"`
	MySQLPass string `mapstructure:"mysql_pass"`

	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`

	IdempTTLSecs int `mapstructure:"idempotency_ttl_seconds"`

	KafkaBrokers  []string `mapstructure:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"`
	OutboxRetries int      `mapstructure:"outbox_max_retries"`

	InterestRate     string `mapstructure:"interest_rate"`
	FlowMode         string `mapstructure:"flow_mode"`
	SimSeed          uint64 `mapstructure:"sim_seed"`
	AutoEvaluateSpec string `mapstructure:"auto_evaluate_spec"`
	WorldLockTTLSecs int    `mapstructure:"world_lock_ttl_seconds"`

	LogLevel string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"app_port":                "8080",
	"db_driver":               "mysql",
	"sqlite_path":             "fivebells.db",
	"mysql_host":              "mysql",
	"mysql_port":              "3306",
	"mysql_db":                "fivebells",
	"mysql_user":              "fivebells",
	"mysql_pass":              "fivebells",
	"redis_addr":              "redis:6379",
	"redis_db":                0,
	"idempotency_ttl_seconds": 300,
	"kafka_brokers":           []string{},
	"kafka_topic":             "fivebells",
	"outbox_max_retries":      5,
	"interest_rate":           "4.3",
	"flow_mode":               "last_value",
	"sim_seed":                1,
	"auto_evaluate_spec":      "",
	"world_lock_ttl_seconds":  60,
	"log_level":               "info",
}

// Load reads defaults, then the optional YAML file at path, then the
// environment (APP_PORT, MYSQL_HOST, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// a comma separated KAFKA_BROKERS arrives as one element
	if len(c.KafkaBrokers) == 1 && strings.Contains(c.KafkaBrokers[0], ",") {
		c.KafkaBrokers = strings.Split(c.KafkaBrokers[0], ",")
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := c.Rate(); err != nil {
		return err
	}
	if c.WorldLockTTLSecs < 1 {
		return fmt.Errorf("invalid WORLD_LOCK_TTL_SECONDS %d", c.WorldLockTTLSecs)
	}
	return nil
}

// Rate is the yearly percentage every bank offers.
func (c *Config) Rate() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.InterestRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid INTEREST_RATE %q: %w", c.InterestRate, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid INTEREST_RATE %q: negative", c.InterestRate)
	}
	return d, nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
