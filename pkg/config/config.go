package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cache         CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := ReferenceLocation(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SARISARI_APP_ENV" required:"true"`
	Port         string `envconfig:"SARISARI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SARISARI_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SARISARI_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SARISARI_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"SARISARI_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// ReferenceLocation resolves the timezone calendar days are computed in. It
// is fixed because the gcash_earnings unique day index is built in it.
func ReferenceLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", ReferenceTimezone, err)
	}
	return loc, nil
}

type DBConfig struct {
	DSN    string `envconfig:"SARISARI_DB_DSN"`
	Driver string `envconfig:"SARISARI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SARISARI_DB_HOST"`
	LegacyPort     int    `envconfig:"SARISARI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SARISARI_DB_USER"`
	LegacyPassword string `envconfig:"SARISARI_DB_PASSWORD"`
	LegacyName     string `envconfig:"SARISARI_DB_NAME"`
	LegacySSLMode  string `envconfig:"SARISARI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SARISARI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SARISARI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SARISARI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SARISARI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SARISARI_REDIS_URL"`
	Address      string        `envconfig:"SARISARI_REDIS_ADDR"`
	Password     string        `envconfig:"SARISARI_REDIS_PASSWORD"`
	DB           int           `envconfig:"SARISARI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SARISARI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SARISARI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SARISARI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SARISARI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SARISARI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SARISARI_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SARISARI_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SARISARI_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SARISARI_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SARISARI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SARISARI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SARISARI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SARISARI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SARISARI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SARISARI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SARISARI_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SARISARI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SARISARI_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SARISARI_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SARISARI_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SARISARI_AUTO_MIGRATE" default:"false"`
}

// CacheConfig tunes the read-through caches kept in Redis.
type CacheConfig struct {
	EarningsTTL       time.Duration `envconfig:"SARISARI_CACHE_EARNINGS_TTL" default:"300s"`
	EarningsSweepPage int           `envconfig:"SARISARI_CACHE_EARNINGS_SWEEP_PAGES" default:"5"`
	DefaultPageLimit  int           `envconfig:"SARISARI_CACHE_DEFAULT_PAGE_LIMIT" default:"15"`
	CurrentUserTTL    time.Duration `envconfig:"SARISARI_CACHE_CURRENT_USER_TTL" default:"60s"`
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
