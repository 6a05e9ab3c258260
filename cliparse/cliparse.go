package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Defaults
const (
	DefaultPort           = 3000
	DefaultDatabaseType   = "mysql"
	DefaultDBPoolSize     = 10
	DefaultPointsReward   = 3
	DefaultNXReward       = 5000
	DefaultGameAPIHost    = "localhost"
	DefaultGameAPIPort    = 3000
	DefaultGameAPITimeout = 5 * time.Second
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	DBPoolSize   int

	// Vote pingback
	PingbackKey              string
	VotePointsReward         int
	VoteNXReward             int
	VoteMissingResultSuccess bool
	VoteAuditLog             bool

	// Game server REST API, e.g. http://localhost:3000/api
	GameAPIURL     string
	GameAPITimeout time.Duration

	LogLevel string
}

// DriverName returns the database/sql driver registered for DatabaseType
func (c Config) DriverName() string {
	return c.DatabaseType
}

// ParseFlags builds the configuration. Precedence, low to high: defaults,
// YAML file (-c or CONFIG_FILE), environment, CLI flags.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configFile string

	fs := flag.NewFlagSet("blossom-site", flag.ContinueOnError)

	fs.StringVar(&configFile, "c", "", "YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL / DSN")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (mysql, postgres or sqlite)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.PingbackKey, "pingback-key", "", "GTop100 pingback key (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	k, err := load(configFile)
	if err != nil {
		return Config{}, err
	}

	// Fall back to file/env settings
	if cfg.Port == 0 {
		if cfg.Port, err = intSetting(k, "port", DefaultPort); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = strings.ToLower(k.String("database_type"))
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	switch cfg.DatabaseType {
	case "mysql", "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = k.String("database_url")
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseType == "mysql" && k.String("db_host") != "" {
		cfg.DatabaseURL = mysqlDSN(k)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d, DATABASE_URL or DB_HOST)")
	}

	if cfg.DBPoolSize, err = intSetting(k, "db_pool_size", DefaultDBPoolSize); err != nil {
		return Config{}, err
	}
	if cfg.DBPoolSize <= 0 {
		cfg.DBPoolSize = DefaultDBPoolSize
	}

	// Not required here: an unset key makes every pingback fail closed
	if cfg.PingbackKey == "" {
		cfg.PingbackKey = k.String("gtop100_pingback_key")
	}

	if cfg.VotePointsReward, err = intSetting(k, "vote_points_reward", DefaultPointsReward); err != nil {
		return Config{}, err
	}
	if cfg.VotePointsReward <= 0 {
		cfg.VotePointsReward = DefaultPointsReward
	}
	if cfg.VoteNXReward, err = intSetting(k, "vote_nx_reward", DefaultNXReward); err != nil {
		return Config{}, err
	}
	if cfg.VoteNXReward <= 0 {
		cfg.VoteNXReward = DefaultNXReward
	}
	if cfg.VoteMissingResultSuccess, err = boolSetting(k, "vote_missing_result_success", true); err != nil {
		return Config{}, err
	}
	if cfg.VoteAuditLog, err = boolSetting(k, "vote_audit_log", false); err != nil {
		return Config{}, err
	}

	if cfg.GameAPIURL, err = gameAPIURL(k); err != nil {
		return Config{}, err
	}
	cfg.GameAPITimeout = DefaultGameAPITimeout
	if raw := k.String("game_api_timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, errors.New("invalid GAME_API_TIMEOUT env variable")
		}
		cfg.GameAPITimeout = d
	}

	cfg.LogLevel = strings.ToLower(k.String("log_level"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// load layers the optional YAML file under the process environment. Keys
// are the lower-cased environment variable names.
func load(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	return k, nil
}

func intSetting(k *koanf.Koanf, key string, def int) (int, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", strings.ToUpper(key))
	}
	return n, nil
}

func boolSetting(k *koanf.Koanf, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", strings.ToUpper(key))
	}
	return b, nil
}

// mysqlDSN assembles a DSN from the DB_HOST/DB_USER/DB_PASSWORD/DB_NAME
// variables the game server's own tooling uses.
func mysqlDSN(k *koanf.Koanf) string {
	host := k.String("db_host")
	if _, _, err := net.SplitHostPort(host); err != nil {
		port := k.String("db_port")
		if port == "" {
			port = "3306"
		}
		host = net.JoinHostPort(host, port)
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = host
	mc.User = k.String("db_user")
	mc.Passwd = k.String("db_password")
	mc.DBName = k.String("db_name")
	mc.ParseTime = true
	return mc.FormatDSN()
}

func gameAPIURL(k *koanf.Koanf) (string, error) {
	if u := k.String("game_api_url"); u != "" {
		return strings.TrimRight(u, "/"), nil
	}

	host := k.String("game_server_host")
	if host == "" {
		host = DefaultGameAPIHost
	}
	port, err := intSetting(k, "game_api_port", DefaultGameAPIPort)
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/api", nil
}
