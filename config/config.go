package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Addr           string
	Store          string
	DBUrl          string
	RedisUrl       string
	RedisPrefix    string
	TokenSecret    string
	TokenTTL       time.Duration
	AllowedOrigins []string
	SessionIdle    time.Duration
	IssueToken     bool
	Debug          bool
	LogJSON        bool
}

// ParseFlags reads the command line. Every flag defaults to its QUIZ_*
// environment variable, which may come from a .env file.
func ParseFlags() (Config, error) {
	return Parse(flag.CommandLine, os.Args[1:])
}

func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	_ = godotenv.Load()

	var host string
	fs.StringVar(&host, "host", getEnv("QUIZ_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(getEnvInt("QUIZ_PORT", 8080)), "listen port number")
	fs.StringVar(&cfg.Store, "store", getEnv("QUIZ_STORE", StoreSQLite), "durable store backend: sqlite, redis or memory")
	fs.StringVar(&cfg.DBUrl, "db-url", getEnv("QUIZ_DB_URL", "qquiz.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.RedisUrl, "redis-url", getEnv("QUIZ_REDIS_URL", "redis://localhost:6379/0"), "Redis URL for the redis store")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", getEnv("QUIZ_REDIS_PREFIX", "qquiz:"), "key prefix for the redis store")
	fs.StringVar(&cfg.TokenSecret, "token-secret", getEnv("QUIZ_TOKEN_SECRET", ""), "secret key signing editor tokens; empty leaves the editor API open")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(getEnvInt("QUIZ_TOKEN_TTL", 8*3600)), "lifetime in seconds of issued editor tokens")
	var origins string
	fs.StringVar(&origins, "allowed-origins", getEnv("QUIZ_ALLOWED_ORIGINS", ""), "comma separated origins allowed by CORS")
	var idle uint
	fs.UintVar(&idle, "session-idle", uint(getEnvInt("QUIZ_SESSION_IDLE", 3600)), "seconds before an untouched respondent session is closed")
	fs.BoolVar(&cfg.IssueToken, "issue-token", false, "print an editor token and exit")
	fs.BoolVar(&cfg.Debug, "debug", getEnv("QUIZ_DEBUG", "") == "true", "log at DEBUG level")
	fs.BoolVar(&cfg.LogJSON, "log-json", getEnv("QUIZ_LOG_JSON", "") == "true", "log JSON lines instead of text")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.SessionIdle = time.Duration(idle) * time.Second
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	switch {
	case cfg.Store != StoreSQLite && cfg.Store != StoreRedis && cfg.Store != StoreMemory:
		err = errors.New("parameter -store must be one of sqlite, redis, memory")
	case cfg.IssueToken && cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
