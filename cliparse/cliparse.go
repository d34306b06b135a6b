package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	MaxOpenConns int
	StoreTimeout time.Duration

	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration
	CookieSecure   bool

	AllowedOrigins      []string
	ModeratorKey        string
	ProposeRequiresAuth bool
	LogFormat           string
}

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabasePGX      = "pgx"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

var defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:5173"}

// LoadDotEnv reads a .env file into the process environment if one exists.
// Variables already set are left alone.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var origins, storeTimeout, sessionTTL string
	var cookieSecure, proposeAuth string

	fs := flag.NewFlagSet("thisorthat", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or pgx)")
	fs.IntVar(&cfg.MaxOpenConns, "max-conns", 0, "Maximum open database connections")
	fs.StringVar(&storeTimeout, "store-timeout", "", "Timeout for a single store call")

	// Sessions
	fs.StringVar(&cfg.SessionBackend, "session-backend", "", "Session storage (memory or redis)")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for session storage")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime")
	fs.StringVar(&cookieSecure, "cookie-secure", "", "Mark the session cookie Secure")

	// HTTP shell
	fs.StringVar(&origins, "origins", "", "Comma separated CORS origins")
	fs.StringVar(&cfg.ModeratorKey, "moderator-key", "", "Moderator key (prefer env)")
	fs.StringVar(&proposeAuth, "propose-requires-auth", "", "Require a session to propose polls")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabasePGX:
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.MaxOpenConns == 0 {
		n, err := envInt("MAX_OPEN_CONNS", 10)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxOpenConns = n
	}

	var err error
	if cfg.StoreTimeout, err = durationValue(storeTimeout, "STORE_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationValue(sessionTTL, "SESSION_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}

	if cfg.SessionBackend == "" {
		cfg.SessionBackend = os.Getenv("SESSION_BACKEND")
		if cfg.SessionBackend == "" {
			cfg.SessionBackend = SessionMemory
		}
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	switch cfg.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if cfg.RedisAddr == "" {
			return Config{}, errors.New("REDIS_ADDR required for redis session backend")
		}
	default:
		return Config{}, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}

	if cfg.CookieSecure, err = boolValue(cookieSecure, "COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.ProposeRequiresAuth, err = boolValue(proposeAuth, "PROPOSE_REQUIRES_AUTH", false); err != nil {
		return Config{}, err
	}

	if origins == "" {
		origins = os.Getenv("ALLOWED_ORIGINS")
	}
	if origins == "" {
		cfg.AllowedOrigins = defaultOrigins
	} else {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	// Secrets - optional; approval endpoint stays disabled without one
	if cfg.ModeratorKey == "" {
		cfg.ModeratorKey = os.Getenv("MODERATOR_KEY")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
		if cfg.LogFormat == "" {
			cfg.LogFormat = "text"
		}
	}

	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", name)
	}
	return n, nil
}

func durationValue(flagVal, env string, def time.Duration) (time.Duration, error) {
	s := flagVal
	if s == "" {
		s = os.Getenv(env)
	}
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", env, s)
	}
	return d, nil
}

func boolValue(flagVal, env string, def bool) (bool, error) {
	s := flagVal
	if s == "" {
		s = os.Getenv(env)
	}
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", env, s)
	}
	return b, nil
}
