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
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	SMS           SMSConfig
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
	Env          string `envconfig:"MECHANIX_APP_ENV" required:"true"`
	Port         string `envconfig:"MECHANIX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MECHANIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MECHANIX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MECHANIX_DB_DSN"`
	Driver string `envconfig:"MECHANIX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MECHANIX_DB_HOST"`
	LegacyPort     int    `envconfig:"MECHANIX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MECHANIX_DB_USER"`
	LegacyPassword string `envconfig:"MECHANIX_DB_PASSWORD"`
	LegacyName     string `envconfig:"MECHANIX_DB_NAME"`
	LegacySSLMode  string `envconfig:"MECHANIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MECHANIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MECHANIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MECHANIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MECHANIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MECHANIX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MECHANIX_REDIS_ADDR"`
	Password     string        `envconfig:"MECHANIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"MECHANIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MECHANIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MECHANIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MECHANIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MECHANIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MECHANIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret               string `envconfig:"MECHANIX_JWT_SECRET" required:"true"`
	Issuer               string `envconfig:"MECHANIX_JWT_ISSUER" required:"true"`
	AccessExpiryMinutes  int    `envconfig:"MECHANIX_JWT_ACCESS_EXPIRY_MINUTES" default:"30"`
	RefreshExpiryMinutes int    `envconfig:"MECHANIX_JWT_REFRESH_EXPIRY_MINUTES" default:"43200"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.AccessExpiryMinutes <= 0 {
		return 0
	}
	return time.Duration(j.AccessExpiryMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (j JWTConfig) RefreshTTL() time.Duration {
	if j.RefreshExpiryMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshExpiryMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MECHANIX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MECHANIX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MECHANIX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MECHANIX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MECHANIX_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	TTL        time.Duration `envconfig:"MECHANIX_OTP_TTL" default:"2m"`
	DebugPhone string        `envconfig:"MECHANIX_OTP_DEBUG_PHONE"`
	DebugCode  int           `envconfig:"MECHANIX_OTP_DEBUG_CODE" default:"555555"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"MECHANIX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"MECHANIX_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"MECHANIX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	OTPWindow       time.Duration `envconfig:"MECHANIX_AUTH_RATE_LIMIT_OTP_WINDOW" default:"5m"`
	OTPPhoneLimit   int           `envconfig:"MECHANIX_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"3"`
	OTPIPLimit      int           `envconfig:"MECHANIX_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MECHANIX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MECHANIX_AUTO_MIGRATE" default:"false"`
}

// GCPConfig is optional at load time. A dev process without a project id
// skips SMS publishing; pubsub.NewClient rejects the empty id when a worker
// actually needs the connection.
type GCPConfig struct {
	ProjectID       string `envconfig:"MECHANIX_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"MECHANIX_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	SMSTopic        string `envconfig:"MECHANIX_PUBSUB_SMS_TOPIC" default:"mx-sms-events"`
	SMSSubscription string `envconfig:"MECHANIX_PUBSUB_SMS_SUBSCRIPTION" default:"mx-sms-events-sub"`
}

type SMSConfig struct {
	Provider   string `envconfig:"MECHANIX_SMS_PROVIDER" default:"twilio"`
	AccountSID string `envconfig:"MECHANIX_SMS_ACCOUNT_SID"`
	AuthToken  string `envconfig:"MECHANIX_SMS_AUTH_TOKEN"`
	From       string `envconfig:"MECHANIX_SMS_FROM"`
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
