package gishiki

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/lunagic/gishiki/gishikiservices/cache"
	"github.com/lunagic/gishiki/gishikiservices/database"
	"github.com/lunagic/gishiki/gishikiservices/vault"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	//
	logger *slog.Logger
	// Drivers
	AppDriverDatabase string
	AppDriverCache    string
	// Adapter behavior
	CacheKey           string
	CacheTTL           time.Duration
	DatabaseLockRetry  bool
	DatabasePrimaryKey string
	// Services
	LibSQLAuthToken string
	LibSQLURL       string
	MySQLHost       string
	MySQLName       string
	MySQLPass       string
	MySQLPort       int
	MySQLUser       string
	PostgresHost    string
	PostgresName    string
	PostgresPass    string
	PostgresPort    int
	PostgresUser    string
	RedisHost       string
	RedisNumber     int
	RedisPass       string
	RedisPort       int
	RedisPrefix     string
	RedisUser       string
	SQLitePath      string
}

func NewConfig() Config {
	return Config{
		logger:             slog.Default(),
		AppDriverCache:     "memory",
		AppDriverDatabase:  "sqlite",
		DatabaseLockRetry:  true,
		DatabasePrimaryKey: "id",
		MySQLHost:          "127.0.0.1",
		MySQLPort:          3306,
		PostgresHost:       "127.0.0.1",
		PostgresPort:       5432,
		RedisHost:          "127.0.0.1",
		RedisPort:          6379,
		RedisPrefix:        "gishiki:",
		SQLitePath:         "database.sqlite",
	}
}

// LoadConfig starts from NewConfig, then applies the given .env files (".env"
// when none are given; missing files are skipped) and finally the process
// environment, which wins over the files.
func LoadConfig(envFiles ...string) (Config, error) {
	config := NewConfig()

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	v := viper.New()
	v.AutomaticEnv()

	for _, envFile := range envFiles {
		values, err := godotenv.Read(envFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}

		for key, value := range values {
			v.SetDefault(key, value)
		}
	}

	if err := config.apply(v); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (config *Config) bindings() map[string]any {
	return map[string]any{
		"APP_DRIVER_CACHE":     &config.AppDriverCache,
		"APP_DRIVER_DATABASE":  &config.AppDriverDatabase,
		"CACHE_KEY":            &config.CacheKey,
		"CACHE_TTL":            &config.CacheTTL,
		"DATABASE_LOCK_RETRY":  &config.DatabaseLockRetry,
		"DATABASE_PRIMARY_KEY": &config.DatabasePrimaryKey,
		"LIBSQL_AUTH_TOKEN":    &config.LibSQLAuthToken,
		"LIBSQL_URL":           &config.LibSQLURL,
		"MYSQL_HOST":           &config.MySQLHost,
		"MYSQL_NAME":           &config.MySQLName,
		"MYSQL_PASS":           &config.MySQLPass,
		"MYSQL_PORT":           &config.MySQLPort,
		"MYSQL_USER":           &config.MySQLUser,
		"POSTGRES_HOST":        &config.PostgresHost,
		"POSTGRES_NAME":        &config.PostgresName,
		"POSTGRES_PASS":        &config.PostgresPass,
		"POSTGRES_PORT":        &config.PostgresPort,
		"POSTGRES_USER":        &config.PostgresUser,
		"REDIS_HOST":           &config.RedisHost,
		"REDIS_NUMBER":         &config.RedisNumber,
		"REDIS_PASS":           &config.RedisPass,
		"REDIS_PORT":           &config.RedisPort,
		"REDIS_PREFIX":         &config.RedisPrefix,
		"REDIS_USER":           &config.RedisUser,
		"SQLITE_PATH":          &config.SQLitePath,
	}
}

func (config *Config) apply(v *viper.Viper) error {
	for key, target := range config.bindings() {
		if !v.IsSet(key) {
			continue
		}

		raw := v.Get(key)

		var err error
		switch target := target.(type) {
		case *string:
			*target, err = cast.ToStringE(raw)
		case *int:
			*target, err = cast.ToIntE(raw)
		case *bool:
			*target, err = cast.ToBoolE(raw)
		case *time.Duration:
			*target, err = cast.ToDurationE(raw)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	return nil
}

func (config Config) Logger() *slog.Logger {
	return config.logger
}

// WithLogger returns a copy of the config logging to logger.
func (config Config) WithLogger(logger *slog.Logger) Config {
	config.logger = logger
	return config
}

func (config Config) Driver() (database.Driver, error) {
	switch config.AppDriverDatabase {
	case "sqlite":
		return database.NewDriverSQLite(config.SQLitePath), nil
	case "libsql":
		return database.NewDriverLibSQL(database.DriverLibSQLConfig{
			URL:       config.LibSQLURL,
			AuthToken: config.LibSQLAuthToken,
		}), nil
	case "postgres":
		return database.NewDriverPostgres(database.DriverPostgresConfig{
			Host: config.PostgresHost,
			Port: config.PostgresPort,
			User: config.PostgresUser,
			Pass: config.PostgresPass,
			Name: config.PostgresName,
		}), nil
	case "mysql":
		return database.NewDriverMySQL(database.DriverMySQLConfig{
			Host: config.MySQLHost,
			Port: config.MySQLPort,
			User: config.MySQLUser,
			Pass: config.MySQLPass,
			Name: config.MySQLName,
		}), nil
	}

	return nil, fmt.Errorf("invalid database driver: %s", config.AppDriverDatabase)
}

// Database opens the configured adapter. The config's logger, lock retry,
// primary key and result cache (when CacheTTL is set) are applied before
// configFuncs.
func (config Config) Database(configFuncs ...database.ServiceConfigFunc) (*database.Service, error) {
	driver, err := config.Driver()
	if err != nil {
		return nil, err
	}

	defaults := []database.ServiceConfigFunc{
		database.WithLogger(config.Logger()),
		database.WithPrimaryKey(config.DatabasePrimaryKey),
	}

	if config.DatabaseLockRetry {
		defaults = append(defaults, database.WithLockRetry())
	}

	if config.CacheTTL > 0 {
		cacheDriver, err := config.Cache()
		if err != nil {
			return nil, err
		}

		defaults = append(defaults, database.WithResultCache(cacheDriver, config.CacheTTL))
	}

	return database.New(driver, append(defaults, configFuncs...)...)
}

// Cache builds the configured cache driver, sealed when CacheKey is set.
func (config Config) Cache() (cache.Driver, error) {
	driver, err := config.cacheDriver()
	if err != nil {
		return nil, err
	}

	if config.CacheKey == "" {
		return driver, nil
	}

	v, err := vault.New([]byte(config.CacheKey))
	if err != nil {
		return nil, err
	}

	return cache.NewDriverSealed(driver, v), nil
}

func (config Config) cacheDriver() (cache.Driver, error) {
	switch config.AppDriverCache {
	case "memory":
		return cache.NewDriverMemory()
	case "redis":
		return cache.NewDriverRedis(cache.DriverRedisConfig{
			Host:   config.RedisHost,
			Number: config.RedisNumber,
			Pass:   config.RedisPass,
			Port:   config.RedisPort,
			User:   config.RedisUser,
			Prefix: config.RedisPrefix,
		})
	}

	return nil, fmt.Errorf("invalid cache driver: %s", config.AppDriverCache)
}
