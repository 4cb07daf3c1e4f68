package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Schema       SchemaConfig
	Replenish    ReplenishConfig
	Sales        SalesConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GESTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"GESTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GESTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GESTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GESTOCK_DB_DSN"`
	Driver string `envconfig:"GESTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GESTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"GESTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GESTOCK_DB_USER"`
	LegacyPassword string `envconfig:"GESTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"GESTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"GESTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GESTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GESTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GESTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GESTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GESTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GESTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"GESTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"GESTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GESTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GESTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GESTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GESTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GESTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SchemaConfig drives the item-table discovery cascade. The environment-named
// table is probed first, then the fixed fallbacks, in order.
type SchemaConfig struct {
	ItemTable          string   `envconfig:"GESTOCK_ITEM_TABLE"`
	ItemTableFallbacks []string `envconfig:"GESTOCK_ITEM_TABLE_FALLBACKS" default:"provider_order_items,provider_order_items_v1"`
}

// CandidateItemTables returns the ordered probe list with duplicates removed.
func (s SchemaConfig) CandidateItemTables() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, name := range append([]string{s.ItemTable}, s.ItemTableFallbacks...) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

type ReplenishConfig struct {
	MarginPercent    int  `envconfig:"GESTOCK_MARGIN_PERCENT" default:"30"`
	BulkChunkSize    int  `envconfig:"GESTOCK_BULK_CHUNK_SIZE" default:"25"`
	SnapshotListCap  int  `envconfig:"GESTOCK_SNAPSHOT_LIST_CAP" default:"20"`
	WeekScopeEnabled bool `envconfig:"GESTOCK_WEEK_SCOPE_ENABLED" default:"false"`
}

type SalesConfig struct {
	FilePath string `envconfig:"GESTOCK_SALES_FILE" default:"data/sales_history.csv"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GESTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GESTOCK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
