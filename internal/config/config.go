package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	Database Database
	Auth     Auth
	Redis    Redis
	Archive  Archive

	AdminRecipient         string
	ManagerRecipient       string
	StrictOrderTransitions bool
	ImportKeywordsFile     string
	SeedDemo               bool
}

type Database struct {
	// URL selects postgres when it is a postgres DSN; otherwise File is
	// opened with sqlite.
	URL  string
	File string
}

type Auth struct {
	JWTSecret      string
	SessionTTL     time.Duration
	SessionBackend string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Archive struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (a Archive) Enabled() bool { return a.Endpoint != "" && a.Bucket != "" }

var defaults = map[string]any{
	"http_port":                "8080",
	"data_file":                "stockroom.db",
	"jwt_expires_in":           "24h",
	"session_backend":          "db",
	"redis_addr":               "localhost:6379",
	"redis_db":                 "0",
	"archive_use_ssl":          "false",
	"admin_recipient":          "admin",
	"manager_recipient":        "manager",
	"strict_order_transitions": "false",
	"seed_demo":                "true",
}

// Load reads configuration from the environment, layered over an optional
// YAML file named by CONFIG_FILE whose keys are the lower-cased variable
// names. Call godotenv.Load first if a .env file should be honoured.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }
	return Config{
		Port: str("http_port"),
		Database: Database{
			URL:  str("database_url"),
			File: str("data_file"),
		},
		Auth: Auth{
			JWTSecret:      v.GetString("jwt_secret"),
			SessionTTL:     getDuration(v, "jwt_expires_in"),
			SessionBackend: str("session_backend"),
		},
		Redis: Redis{
			Addr:     str("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       getInt(v, "redis_db"),
		},
		Archive: Archive{
			Endpoint:  str("archive_endpoint"),
			AccessKey: v.GetString("archive_access_key"),
			SecretKey: v.GetString("archive_secret_key"),
			Bucket:    str("archive_bucket"),
			UseSSL:    getBool(v, "archive_use_ssl"),
		},
		AdminRecipient:         str("admin_recipient"),
		ManagerRecipient:       str("manager_recipient"),
		StrictOrderTransitions: getBool(v, "strict_order_transitions"),
		ImportKeywordsFile:     str("import_keywords_file"),
		SeedDemo:               getBool(v, "seed_demo"),
	}, nil
}

// Malformed values fall back to the default rather than to the zero value
// viper's typed getters would return.

func getBool(v *viper.Viper, key string) bool {
	if b, err := strconv.ParseBool(v.GetString(key)); err == nil {
		return b
	}
	b, _ := strconv.ParseBool(defaults[key].(string))
	return b
}

func getInt(v *viper.Viper, key string) int {
	if n, err := strconv.Atoi(v.GetString(key)); err == nil {
		return n
	}
	n, _ := strconv.Atoi(defaults[key].(string))
	return n
}

func getDuration(v *viper.Viper, key string) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaults[key].(string))
	return d
}
