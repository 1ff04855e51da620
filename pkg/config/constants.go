package config

const (
	EnvPrefix = "KIOSK"

	EnvAppEnv   = "KIOSK_APP_ENV"
	EnvPort     = "KIOSK_APP_PORT"
	EnvLogLevel = "KIOSK_LOG_LEVEL"

	EnvDeviceOrigin = "KIOSK_DEVICE_ORIGIN"
	EnvInstanceID   = "KIOSK_INSTANCE_ID"

	EnvStorageDriver   = "KIOSK_STORAGE_DRIVER"
	EnvBroadcastDriver = "KIOSK_BROADCAST_DRIVER"

	EnvDBDSN    = "KIOSK_DB_DSN"
	EnvDBDriver = "KIOSK_DB_DRIVER"

	EnvRedisURL  = "KIOSK_REDIS_URL"
	EnvRedisAddr = "KIOSK_REDIS_ADDR"

	EnvBackendURL = "KIOSK_BACKEND_URL"

	StorageDriverRedis    = "redis"
	StorageDriverSQL      = "sql"
	BroadcastDriverRedis  = "redis"
	BroadcastDriverLocal  = "local"
	DBDriverSQLite        = "sqlite"
	DBDriverPostgres      = "postgres"
	defaultSQLiteFileName = "kiosk.db"
)
