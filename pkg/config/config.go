package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Development signing keys. Production refuses to start with any of them.
const (
	devJWTSecret       = "dev_secret"
	devOTPSecret       = "dev_otp_secret"
	devDocumentsSecret = "dev_documents_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	SMTP          SMTPConfig
	Webhook       WebhookConfig
	OTP           OTPConfig
	Registration  RegistrationConfig
	Documents     DocumentsConfig
	Notifications NotificationsConfig
	Metrics       MetricsConfig
	RateLimit     RateLimitConfig
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	AutoMigrate    bool
	MigrationsDir  string
	// ConnectTimeout bounds how long startup waits for the database to
	// accept connections.
	ConnectTimeout time.Duration
}

// URL renders the connection settings as a postgres:// URL for tooling that
// does not accept key/value DSNs (migrations).
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
	// File enables a rotating JSON file sink next to stdout when set.
	File string
}

// SMTPConfig describes the relay used for confirmation and OTP mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
	FromName string
}

// WebhookConfig points at the workflow-automation endpoint used for event confirmations.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// OTPConfig tunes email verification codes.
type OTPConfig struct {
	Secret         string
	TTL            time.Duration
	MaxAttempts    int
	ResendInterval time.Duration
	ExposeCode     bool
}

// RegistrationConfig governs the bible quiz registration pipeline.
type RegistrationConfig struct {
	Organization          string
	EventName             string
	MinParticipants       int
	MaxParticipants       int
	SequenceScanLimit     int
	RequireVerifiedEmail  bool
	VerificationTTL       time.Duration
	GroupNumberMaxRetries int
}

// DocumentsConfig controls where rendered registration forms are kept.
type DocumentsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	RetentionTTL    time.Duration
}

// NotificationsConfig toggles background delivery of confirmation mail.
type NotificationsConfig struct {
	Async   bool
	Workers int
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// RateLimitConfig throttles public form endpoints per client IP.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are only safe in development. Anyone who
// knows a default key can forge OTP verification tokens, document links or
// admin access tokens.
func (c *Config) Validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	var insecure []string
	for name, pair := range map[string][2]string{
		"JWT_SECRET":                  {c.JWT.Secret, devJWTSecret},
		"OTP_SECRET":                  {c.OTP.Secret, devOTPSecret},
		"DOCUMENTS_SIGNED_URL_SECRET": {c.Documents.SignedURLSecret, devDocumentsSecret},
	} {
		if pair[0] == "" || pair[0] == pair[1] {
			insecure = append(insecure, name)
		}
	}
	if len(insecure) > 0 {
		sort.Strings(insecure)
		return fmt.Errorf("production requires non-default secrets: %s", strings.Join(insecure, ", "))
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:    v.GetBool("DB_AUTO_MIGRATE"),
		MigrationsDir:  v.GetString("DB_MIGRATIONS_DIR"),
		ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Secure:   v.GetBool("SMTP_SECURE"),
		User:     v.GetString("SMTP_USER"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		FromName: v.GetString("SMTP_FROM_NAME"),
	}

	cfg.Webhook = WebhookConfig{
		URL:     v.GetString("N8N_WEBHOOK_URL"),
		Timeout: parseDuration(v.GetString("WEBHOOK_TIMEOUT"), 10*time.Second),
	}

	maxAttempts := v.GetInt("OTP_MAX_ATTEMPTS")
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	cfg.OTP = OTPConfig{
		Secret:         v.GetString("OTP_SECRET"),
		TTL:            parseDuration(v.GetString("OTP_TTL"), 10*time.Minute),
		MaxAttempts:    maxAttempts,
		ResendInterval: parseDuration(v.GetString("OTP_RESEND_INTERVAL"), 30*time.Second),
		ExposeCode:     v.GetBool("OTP_EXPOSE_CODE"),
	}

	cfg.Registration = RegistrationConfig{
		Organization:          v.GetString("REGISTRATION_ORGANIZATION"),
		EventName:             v.GetString("REGISTRATION_EVENT_NAME"),
		MinParticipants:       v.GetInt("REGISTRATION_MIN_PARTICIPANTS"),
		MaxParticipants:       v.GetInt("REGISTRATION_MAX_PARTICIPANTS"),
		SequenceScanLimit:     v.GetInt("REGISTRATION_SEQUENCE_SCAN_LIMIT"),
		RequireVerifiedEmail:  v.GetBool("REGISTRATION_REQUIRE_VERIFIED_EMAIL"),
		VerificationTTL:       parseDuration(v.GetString("REGISTRATION_VERIFICATION_TTL"), time.Hour),
		GroupNumberMaxRetries: v.GetInt("REGISTRATION_GROUP_NUMBER_RETRIES"),
	}

	cfg.Documents = DocumentsConfig{
		StorageDir:      v.GetString("DOCUMENTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("DOCUMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("DOCUMENTS_SIGNED_URL_TTL"), 30*24*time.Hour),
		RetentionTTL:    parseDuration(v.GetString("DOCUMENTS_RETENTION_TTL"), 365*24*time.Hour),
	}

	cfg.Notifications = NotificationsConfig{
		Async:   v.GetBool("NOTIFY_ASYNC"),
		Workers: v.GetInt("NOTIFY_WORKERS"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.RateLimit = RateLimitConfig{
		PerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		Burst:     v.GetInt("RATE_LIMIT_BURST"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "church_events")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("DB_MIGRATIONS_DIR", "")
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "church-events-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_SECURE", false)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@localhost")
	v.SetDefault("SMTP_FROM_NAME", "Events Desk")

	v.SetDefault("N8N_WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")

	v.SetDefault("OTP_SECRET", devOTPSecret)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_MAX_ATTEMPTS", 3)
	v.SetDefault("OTP_RESEND_INTERVAL", "30s")
	v.SetDefault("OTP_EXPOSE_CODE", false)

	v.SetDefault("REGISTRATION_ORGANIZATION", "")
	v.SetDefault("REGISTRATION_EVENT_NAME", "Bible Quiz")
	v.SetDefault("REGISTRATION_MIN_PARTICIPANTS", 2)
	v.SetDefault("REGISTRATION_MAX_PARTICIPANTS", 8)
	v.SetDefault("REGISTRATION_SEQUENCE_SCAN_LIMIT", 100)
	v.SetDefault("REGISTRATION_REQUIRE_VERIFIED_EMAIL", false)
	v.SetDefault("REGISTRATION_VERIFICATION_TTL", "1h")
	v.SetDefault("REGISTRATION_GROUP_NUMBER_RETRIES", 3)

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./documents")
	v.SetDefault("DOCUMENTS_SIGNED_URL_SECRET", devDocumentsSecret)
	v.SetDefault("DOCUMENTS_SIGNED_URL_TTL", "720h")
	v.SetDefault("DOCUMENTS_RETENTION_TTL", "8760h")

	v.SetDefault("NOTIFY_ASYNC", false)
	v.SetDefault("NOTIFY_WORKERS", 2)

	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
