package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
)

const (
	SessionDriverRedis    = "redis"
	SessionDriverPostgres = "postgres"
	SessionDriverMemory   = "memory"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	CookieSecret  []byte
	SecureCookies bool

	BackendBaseURL     string
	BackendTimeout     time.Duration
	BackendSlowTimeout time.Duration

	SessionDriver  string
	SessionSealKey [32]byte
	SessionTTL     time.Duration

	// ConfirmKey signs delete confirmation tokens.
	ConfirmKey [32]byte

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		JWTKey:             []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:             time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 12)) * time.Hour,
		CookieSecret:       []byte(getEnv("COOKIE_SECRET", "defaultcookiesecret")),
		SecureCookies:      getEnvAsBool("SECURE_COOKIES", false),
		BackendBaseURL:     strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:3000"), "/"),
		BackendTimeout:     time.Duration(getEnvAsInt("BACKEND_TIMEOUT_MS", 15000)) * time.Millisecond,
		BackendSlowTimeout: time.Duration(getEnvAsInt("BACKEND_SLOW_TIMEOUT_MS", 120000)) * time.Millisecond,
		SessionDriver:      getEnv("SESSION_DRIVER", SessionDriverRedis),
		SessionTTL:         time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 12)) * time.Hour,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "tecrank_admin"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	sealSecret := []byte(getEnv("SESSION_SEAL_KEY", ""))
	if len(sealSecret) == 0 {
		sealSecret = cfg.JWTKey
	}
	cfg.SessionSealKey = deriveKey(sealSecret, "tecrank session seal")
	cfg.ConfirmKey = deriveKey(cfg.CookieSecret, "tecrank delete confirmation")

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

// Validate reports settings the dashboard cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.BackendBaseURL == "" {
		errs = append(errs, errors.New("BACKEND_BASE_URL must not be empty"))
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, errors.New("BACKEND_TIMEOUT_MS must be positive"))
	}
	if c.BackendSlowTimeout <= 0 {
		errs = append(errs, errors.New("BACKEND_SLOW_TIMEOUT_MS must be positive"))
	}
	switch c.SessionDriver {
	case SessionDriverRedis, SessionDriverPostgres, SessionDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_DRIVER %q", c.SessionDriver))
	}
	return errors.Join(errs...)
}

// deriveKey expands secret into a 32-byte key bound to purpose, so that one secret never
// serves two uses with the same bytes.
func deriveKey(secret []byte, purpose string) [32]byte {
	var key [32]byte
	r := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		panic(fmt.Sprintf("config: deriving %s key: %v", purpose, err))
	}
	return key
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
