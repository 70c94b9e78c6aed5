package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cache         CacheConfig
	Plans         PlansConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SIPCOURSE_APP_ENV" required:"true"`
	Port         string `envconfig:"SIPCOURSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SIPCOURSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIPCOURSE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SIPCOURSE_LOG_FORMAT" default:"json"`
	// CORSOrigins is a comma separated allow list; empty means the defaults.
	CORSOrigins     []string      `envconfig:"SIPCOURSE_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"SIPCOURSE_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// ConsoleLogs reports whether logs should use the human readable writer.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(strings.TrimSpace(a.LogFormat), LogFormatConsole)
}

type DBConfig struct {
	DSN    string `envconfig:"SIPCOURSE_DB_DSN"`
	Driver string `envconfig:"SIPCOURSE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SIPCOURSE_DB_HOST"`
	Port     int    `envconfig:"SIPCOURSE_DB_PORT" default:"5432"`
	User     string `envconfig:"SIPCOURSE_DB_USER"`
	Password string `envconfig:"SIPCOURSE_DB_PASSWORD"`
	Name     string `envconfig:"SIPCOURSE_DB_NAME"`
	SSLMode  string `envconfig:"SIPCOURSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIPCOURSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIPCOURSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIPCOURSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIPCOURSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SIPCOURSE_REDIS_URL"`
	Address      string        `envconfig:"SIPCOURSE_REDIS_ADDR"`
	Password     string        `envconfig:"SIPCOURSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIPCOURSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIPCOURSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIPCOURSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIPCOURSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIPCOURSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIPCOURSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SIPCOURSE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SIPCOURSE_JWT_ISSUER" default:"sipcourse"`
	ExpirationMinutes      int    `envconfig:"SIPCOURSE_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"SIPCOURSE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SIPCOURSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SIPCOURSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SIPCOURSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SIPCOURSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SIPCOURSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SIPCOURSE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CacheConfig struct {
	PortfolioSummaryTTL time.Duration `envconfig:"SIPCOURSE_CACHE_PORTFOLIO_SUMMARY_TTL" default:"5m"`
	CatalogDomainsTTL   time.Duration `envconfig:"SIPCOURSE_CACHE_CATALOG_DOMAINS_TTL" default:"10m"`
}

type PlansConfig struct {
	// AllowFullPurchase toggles the "full" plan type next to "sip".
	AllowFullPurchase bool `envconfig:"SIPCOURSE_PLANS_ALLOW_FULL_PURCHASE" default:"true"`
	ListDefaultLimit  int  `envconfig:"SIPCOURSE_PLANS_LIST_DEFAULT_LIMIT" default:"25"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SIPCOURSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SIPCOURSE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
