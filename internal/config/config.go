package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig with an empty Addr disables redis; rate limiting then falls
// back to an in-process limiter.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	Region         string
	PublicBaseURL  string
	MaxUploadBytes int64
}

type SecurityConfig struct {
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	DeviceSecret     string
	BcryptCost       int
	MaxDevices       int
}

type CookieConfig struct {
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
	Domain        string
}

type OTPConfig struct {
	Age         time.Duration
	MaxAttempts int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	AuthRequests int
	AuthWindow   time.Duration
}

type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Cookies          CookieConfig
	OTP              OTPConfig
	SMTP             SMTPConfig
	RateLimit        RateLimitConfig
	Sentry           SentryConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("STOCKIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	var problems []string
	if c.Postgres.DSN == "" {
		problems = append(problems, "postgres.dsn is required")
	}
	if c.Security.JWTAccessSecret == "" || c.Security.JWTRefreshSecret == "" {
		problems = append(problems, "security.jwtaccesssecret and security.jwtrefreshsecret are required")
	} else if c.Security.JWTAccessSecret == c.Security.JWTRefreshSecret {
		problems = append(problems, "access and refresh secrets must differ")
	}
	if c.Security.DeviceSecret == "" {
		problems = append(problems, "security.devicesecret is required")
	}
	if c.Security.BcryptCost < 10 {
		problems = append(problems, "security.bcryptcost must be at least 10")
	}
	if c.Security.MaxDevices < 1 {
		problems = append(problems, "security.maxdevices must be at least 1")
	}
	if c.OTP.Age <= 0 {
		problems = append(problems, "otp.age must be positive")
	}
	if c.RateLimit.AuthRequests < 1 || c.RateLimit.AuthWindow <= 0 {
		problems = append(problems, "ratelimit.authrequests and ratelimit.authwindow must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.requesttimeout", "30s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "stockify-media")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.publicbaseurl", "")
	v.SetDefault("storage.maxuploadbytes", 2<<20)

	v.SetDefault("security.jwtaccesssecret", "")
	v.SetDefault("security.jwtrefreshsecret", "")
	v.SetDefault("security.jwtaccessttl", "15m")
	v.SetDefault("security.jwtrefreshttl", "168h") // 7 days
	v.SetDefault("security.devicesecret", "")
	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.maxdevices", 3)

	v.SetDefault("cookies.accessmaxage", "15m")
	v.SetDefault("cookies.refreshmaxage", "168h")
	v.SetDefault("cookies.domain", "")

	v.SetDefault("otp.age", "10m")
	v.SetDefault("otp.maxattempts", 5)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("ratelimit.authrequests", 10)
	v.SetDefault("ratelimit.authwindow", "1m")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.tracessamplerate", 0.0)

	v.SetDefault("allowcorsorigins", []string{"http://localhost:5173"})
}
