// config/config.go - environment backed configuration
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	Server     Server
	Database   Database
	Redis      Redis
	Auth       Auth
	Rules      Rules
	GooglePlay GooglePlay
	Questions  Questions
	RateLimit  RateLimit
}

type Server struct {
	Port         string
	CORSOrigins  string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Database struct {
	Driver   string // postgres or sqlite
	URL      string
	Path     string
	LogLevel string
}

type Redis struct {
	URL string
}

type Auth struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	AdminSeed   string
	AdminPasswd string
}

// Rules holds the gating and reward constants used by the progress and scoring packages.
type Rules struct {
	DailyPointsToChooseSubject int
	GeneralExamMinPoints       int
	GeneralExamMinStreak       int
	CompletionPolicy           string
	PointsPerPart              int
	AllPartsBonus              int
}

type GooglePlay struct {
	PackageName        string
	ServiceAccountFile string
	BaseURL            string
	UseMock            bool
	CleanupInterval    time.Duration
}

type Questions struct {
	Dir string
}

type RateLimit struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
	AuthMax     int
	AuthWindow  time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() Config {
	return Config{
		Env: getEnv("APP_ENV", "development"),
		Server: Server{
			Port:         getEnv("PORT", "3000"),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
			BodyLimit:    getEnvInt("BODY_LIMIT_BYTES", 10*1024*1024),
			ReadTimeout:  getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:      os.Getenv("DATABASE_URL"),
			Path:     getEnv("SQLITE_PATH", "./data/ingresosgo.db"),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		Redis: Redis{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: Auth{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			TokenTTL:    getEnvDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
			BcryptCost:  getEnvInt("BCRYPT_COST", 10),
			AdminSeed:   os.Getenv("ADMIN_USERNAME"),
			AdminPasswd: os.Getenv("ADMIN_PASSWORD"),
		},
		Rules: Rules{
			DailyPointsToChooseSubject: getEnvInt("DAILY_POINTS_TO_CHOOSE_SUBJECT", 100),
			GeneralExamMinPoints:       getEnvInt("GENERAL_EXAM_MIN_POINTS", 180),
			GeneralExamMinStreak:       getEnvInt("GENERAL_EXAM_MIN_STREAK", 3),
			CompletionPolicy:           getEnv("PART_COMPLETION_POLICY", "sticky"),
			PointsPerPart:              getEnvInt("POINTS_PER_PART", 1),
			AllPartsBonus:              getEnvInt("ALL_PARTS_BONUS", 10),
		},
		GooglePlay: GooglePlay{
			PackageName:        getEnv("GOOGLE_PLAY_PACKAGE", "com.ingresosgo.app"),
			ServiceAccountFile: getEnv("GOOGLE_PLAY_SERVICE_ACCOUNT", "./config/google-play-service-account.json"),
			BaseURL:            getEnv("GOOGLE_PLAY_BASE_URL", "https://androidpublisher.googleapis.com"),
			UseMock:            getEnvBool("GOOGLE_PLAY_MOCK", false),
			CleanupInterval:    getEnvDuration("SUBSCRIPTION_CLEANUP_INTERVAL", time.Hour),
		},
		Questions: Questions{
			Dir: getEnv("QUESTIONS_DIR", "./data"),
		},
		RateLimit: RateLimit{
			Enabled:     getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			AuthMax:     getEnvInt("AUTH_RATE_LIMIT_MAX", 10),
			AuthWindow:  getEnvDuration("AUTH_RATE_LIMIT_WINDOW", 5*time.Minute),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate stops the process on settings that make the server unsafe to run.
func (c Config) Validate() {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
		}
		log.Println("⚠️  JWT_SECRET not set, admin tokens use a development secret")
	} else if len(c.Auth.JWTSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		log.Fatalf("FATAL: unsupported DB_DRIVER %q (use postgres or sqlite)", c.Database.Driver)
	}
	if c.IsProduction() && (c.Server.CORSOrigins == "" || c.Server.CORSOrigins == "*") {
		log.Println("WARNING: CORS_ORIGINS not properly configured for production")
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("⚠️  invalid integer for %s: %q, using %d", key, val, defaultVal)
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "":
		return defaultVal
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("⚠️  invalid duration for %s: %q, using %s", key, val, defaultVal)
	}
	return defaultVal
}
