package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Device       DeviceConfig
	Storage      StorageConfig
	DB           DBConfig
	Redis        RedisConfig
	Broadcast    BroadcastConfig
	Backend      BackendConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KIOSK_APP_ENV" default:"dev"`
	Port         string `envconfig:"KIOSK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"KIOSK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KIOSK_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"KIOSK_LOG_FORMAT" default:"json"`

	// CORSOrigins lists the UI origins allowed to call the API.
	CORSOrigins []string `envconfig:"KIOSK_CORS_ORIGINS"`
}

// DeviceConfig identifies the terminal. Origin scopes every stored key and the
// broadcast channel; processes sharing an origin share one cart.
type DeviceConfig struct {
	Origin     string `envconfig:"KIOSK_DEVICE_ORIGIN" default:"till"`
	Namespace  string `envconfig:"KIOSK_DEVICE_NAMESPACE" default:"hz"`
	InstanceID string `envconfig:"KIOSK_INSTANCE_ID"`
}

type StorageConfig struct {
	Driver string `envconfig:"KIOSK_STORAGE_DRIVER" default:"sql"`
}

type DBConfig struct {
	DSN    string `envconfig:"KIOSK_DB_DSN"`
	Driver string `envconfig:"KIOSK_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"KIOSK_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"KIOSK_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"KIOSK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KIOSK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KIOSK_REDIS_URL"`
	Address      string        `envconfig:"KIOSK_REDIS_ADDR"`
	Password     string        `envconfig:"KIOSK_REDIS_PASSWORD"`
	DB           int           `envconfig:"KIOSK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KIOSK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KIOSK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KIOSK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KIOSK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KIOSK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type BroadcastConfig struct {
	Driver     string `envconfig:"KIOSK_BROADCAST_DRIVER" default:"local"`
	BufferSize int    `envconfig:"KIOSK_BROADCAST_BUFFER" default:"16"`
}

type BackendConfig struct {
	BaseURL string        `envconfig:"KIOSK_BACKEND_URL" required:"true"`
	Timeout time.Duration `envconfig:"KIOSK_BACKEND_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	// Timezone used to stamp bill dates.
	Timezone string `envconfig:"KIOSK_CHECKOUT_TIMEZONE" default:"Europe/Berlin"`
}

// Location resolves the configured timezone, falling back to UTC.
func (c CheckoutConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil {
		return time.UTC
	}
	return loc
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KIOSK_AUTO_MIGRATE" default:"true"`
}

func (c *Config) validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Broadcast.Driver = strings.ToLower(strings.TrimSpace(c.Broadcast.Driver))
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))

	if strings.TrimSpace(c.Device.Origin) == "" {
		return fmt.Errorf("%s must not be empty", EnvDeviceOrigin)
	}

	switch c.Storage.Driver {
	case StorageDriverRedis:
		if !c.Redis.Configured() {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case StorageDriverSQL:
		if err := c.DB.ensureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, c.Storage.Driver)
	}

	switch c.Broadcast.Driver {
	case BroadcastDriverRedis:
		if !c.Redis.Configured() {
			return fmt.Errorf("%s or %s is required for the redis broadcast driver", EnvRedisURL, EnvRedisAddr)
		}
	case BroadcastDriverLocal:
	default:
		return fmt.Errorf("unsupported %s %q", EnvBroadcastDriver, c.Broadcast.Driver)
	}

	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("%s is required", EnvBackendURL)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	switch db.Driver {
	case DBDriverSQLite:
		if strings.TrimSpace(db.DSN) == "" {
			db.DSN = defaultSQLiteFileName
		}
		return nil
	case DBDriverPostgres:
		if strings.TrimSpace(db.DSN) == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
}
