package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
)

type Config struct {
	GRPCHost           string
	GRPCPort           int
	GRPCRequestTimeout time.Duration
	HTTPAddr           string
	ShutdownTimeout    time.Duration
	LogLevel           string

	StoreBackend      string
	StoreDir          string
	StoreStrictWrites bool

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	BoltPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	BcryptCost      int
	RequireOperator bool
	SeedCatalog     bool

	// Admin* seed the first administrator when the staff directory is empty.
	AdminName       string
	AdminNationalID string
	AdminUsername   string
	AdminPassword   string
}

func (c Config) GRPCAddr() string {
	return net.JoinHostPort(c.GRPCHost, strconv.Itoa(c.GRPCPort))
}

// Load reads an optional .env file, then CHAIRLINE_* environment variables
// over built-in defaults. Variables already set in the environment win over
// the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CHAIRLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50051)
	v.SetDefault("grpc.addr", "")
	v.SetDefault("grpc.request_timeout", "10s")
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("shutdown.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.backend", BackendJSONFile)
	v.SetDefault("store.dir", "data")
	v.SetDefault("store.strict_writes", false)
	v.SetDefault("database.url", "sqlite://data/chairline.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("bolt.path", "data/chairline.bolt")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "chairline")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.require_operator", false)
	v.SetDefault("auth.admin_name", "Administrator")
	v.SetDefault("auth.admin_national_id", "000")
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("catalog.seed", true)

	_ = v.BindEnv("grpc.host", "CHAIRLINE_GRPC_HOST", "GRPC_HOST")
	_ = v.BindEnv("grpc.port", "CHAIRLINE_GRPC_PORT", "GRPC_PORT")
	_ = v.BindEnv("grpc.addr", "CHAIRLINE_GRPC_ADDR", "GRPC_ADDR")
	_ = v.BindEnv("grpc.request_timeout", "CHAIRLINE_GRPC_REQUEST_TIMEOUT")
	_ = v.BindEnv("http.addr", "CHAIRLINE_HTTP_ADDR", "HTTP_ADDR")
	_ = v.BindEnv("shutdown.timeout", "CHAIRLINE_SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("log.level", "CHAIRLINE_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("store.backend", "CHAIRLINE_STORE_BACKEND")
	_ = v.BindEnv("store.dir", "CHAIRLINE_STORE_DIR")
	_ = v.BindEnv("store.strict_writes", "CHAIRLINE_STORE_STRICT_WRITES")
	_ = v.BindEnv("database.url", "CHAIRLINE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.max_open_conns", "CHAIRLINE_DATABASE_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.max_idle_conns", "CHAIRLINE_DATABASE_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.conn_max_lifetime", "CHAIRLINE_DATABASE_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.conn_max_idle_time", "CHAIRLINE_DATABASE_CONN_MAX_IDLE_TIME")
	_ = v.BindEnv("bolt.path", "CHAIRLINE_BOLT_PATH")
	_ = v.BindEnv("redis.addr", "CHAIRLINE_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "CHAIRLINE_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "CHAIRLINE_REDIS_DB")
	_ = v.BindEnv("redis.prefix", "CHAIRLINE_REDIS_PREFIX")
	_ = v.BindEnv("auth.bcrypt_cost", "CHAIRLINE_BCRYPT_COST")
	_ = v.BindEnv("auth.require_operator", "CHAIRLINE_REQUIRE_OPERATOR")
	_ = v.BindEnv("auth.admin_name", "CHAIRLINE_ADMIN_NAME")
	_ = v.BindEnv("auth.admin_national_id", "CHAIRLINE_ADMIN_NATIONAL_ID")
	_ = v.BindEnv("auth.admin_username", "CHAIRLINE_ADMIN_USERNAME")
	_ = v.BindEnv("auth.admin_password", "CHAIRLINE_ADMIN_PASSWORD")
	_ = v.BindEnv("catalog.seed", "CHAIRLINE_SEED_CATALOG")

	timeout, err := time.ParseDuration(v.GetString("shutdown.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("shutdown.timeout: %w", err)
	}
	grpcTimeout, err := time.ParseDuration(v.GetString("grpc.request_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("grpc.request_timeout: %w", err)
	}
	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return Config{}, fmt.Errorf("database.conn_max_lifetime: %w", err)
	}
	connMaxIdleTime, err := time.ParseDuration(v.GetString("database.conn_max_idle_time"))
	if err != nil {
		return Config{}, fmt.Errorf("database.conn_max_idle_time: %w", err)
	}

	if addr := strings.TrimSpace(v.GetString("grpc.addr")); addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return Config{}, fmt.Errorf("grpc.addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("grpc.addr: invalid port %q", portStr)
		}
		if host != "" {
			v.Set("grpc.host", host)
		}
		v.Set("grpc.port", port)
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("store.backend")))
	switch backend {
	case BackendJSONFile, BackendSQLite, BackendPostgres, BackendBolt, BackendRedis:
	default:
		return Config{}, fmt.Errorf("store.backend: unsupported backend %q", backend)
	}

	if (v.GetString("auth.admin_username") == "") != (v.GetString("auth.admin_password") == "") {
		return Config{}, errors.New("auth.admin_username and auth.admin_password must be set together")
	}

	return Config{
		GRPCHost:           strings.TrimSpace(v.GetString("grpc.host")),
		GRPCPort:           v.GetInt("grpc.port"),
		GRPCRequestTimeout: grpcTimeout,
		HTTPAddr:           strings.TrimSpace(v.GetString("http.addr")),
		ShutdownTimeout:    timeout,
		LogLevel:           v.GetString("log.level"),
		StoreBackend:       backend,
		StoreDir:           v.GetString("store.dir"),
		StoreStrictWrites:  v.GetBool("store.strict_writes"),
		DatabaseURL:        v.GetString("database.url"),
		DBMaxOpenConns:     v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:     v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime:  connMaxLifetime,
		DBConnMaxIdleTime:  connMaxIdleTime,
		BoltPath:           v.GetString("bolt.path"),
		RedisAddr:          v.GetString("redis.addr"),
		RedisPassword:      v.GetString("redis.password"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPrefix:        v.GetString("redis.prefix"),
		BcryptCost:         v.GetInt("auth.bcrypt_cost"),
		RequireOperator:    v.GetBool("auth.require_operator"),
		SeedCatalog:        v.GetBool("catalog.seed"),
		AdminName:          strings.TrimSpace(v.GetString("auth.admin_name")),
		AdminNationalID:    strings.TrimSpace(v.GetString("auth.admin_national_id")),
		AdminUsername:      strings.TrimSpace(v.GetString("auth.admin_username")),
		AdminPassword:      v.GetString("auth.admin_password"),
	}, nil
}
