package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every component constructor.
type Config struct {
	Port    string
	AppEnv  string
	EnvFile string

	JWTSecret     string
	JWTExpiration time.Duration
	BcryptCost    int

	DBPrimaryHost    string
	DBReplicaHost    string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBConnectTimeout time.Duration
	DBMaxOpenConns   int
	DBMigrate        bool

	AllowedOrigin   string
	LogstashTCPAddr string
	LogLevel        string

	FrontendBaseURL string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
}

// Load reads the environment, preceded by a .env file unless APP_ENV is
// explicitly production. An unset APP_ENV means production.
// Every missing required key is reported in a single error.
func Load() (Config, error) {
	envFile := ""
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err == nil {
			envFile = ".env"
		}
	}

	var missing []string
	required := func(k string) string {
		v := strings.TrimSpace(os.Getenv(k))
		if v == "" {
			missing = append(missing, k)
		}
		return v
	}

	cfg := Config{
		Port:    getenv("PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "production"),
		EnvFile: envFile,

		JWTSecret: required("JWT_SECRET"),

		DBPrimaryHost: required("DB_PRIMARY_HOST"),
		DBReplicaHost: required("DB_READ_REPLICA_HOST"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        required("DB_USER"),
		DBPassword:    required("DB_PASSWORD"),
		DBName:        required("DB_NAME"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMigrate:     getenv("DB_MIGRATE", "false") == "true",

		AllowedOrigin:   required("ALLOWED_ORIGIN"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		FrontendBaseURL: getenv("FRONTEND_BASE_URL", "http://localhost:3000"),
		SMTPHost:        getenv("SMTP_HOST", ""),
		SMTPPort:        getenv("SMTP_PORT", "587"),
		SMTPUsername:    getenv("SMTP_USERNAME", ""),
		SMTPPassword:    getenv("SMTP_PASSWORD", ""),
		SMTPFrom:        getenv("SMTP_FROM", ""),
	}
	rawExpiration := required("JWT_EXPIRATION")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}

	var errs []error
	var err error
	if cfg.JWTExpiration, err = parseDuration(rawExpiration); err != nil || cfg.JWTExpiration <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRATION: invalid duration %q", rawExpiration))
	}
	if cfg.DBConnectTimeout, err = parseDuration(getenv("DB_CONNECT_TIMEOUT", "10s")); err != nil || cfg.DBConnectTimeout <= 0 {
		errs = append(errs, errors.New("DB_CONNECT_TIMEOUT: invalid duration"))
	}
	if cfg.BcryptCost, err = strconv.Atoi(getenv("BCRYPT_COST", "10")); err != nil {
		errs = append(errs, errors.New("BCRYPT_COST: not an integer"))
	}
	if cfg.DBMaxOpenConns, err = strconv.Atoi(getenv("DB_MAX_OPEN_CONNS", "0")); err != nil || cfg.DBMaxOpenConns < 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS: not a non-negative integer"))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// PasswordResetURL is the frontend page that reset emails link to.
func (c Config) PasswordResetURL() string {
	return strings.TrimRight(c.FrontendBaseURL, "/") + "/reset-password"
}

// parseDuration accepts Go durations plus a whole-day form such as "7d".
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
