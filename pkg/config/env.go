// Env loader
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Wryz/bible-modules/internal/kv"
)

type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	CorpusPath string `mapstructure:"corpus_path"`
	// BookScopeFrom is the first book eligible for random picks; the scope
	// runs from it to the end of the corpus.
	BookScopeFrom string `mapstructure:"book_scope_from"`
	RandomSeed    uint64 `mapstructure:"random_seed"`

	PromoteInterval time.Duration `mapstructure:"promote_interval"`
	PopulateCount   int           `mapstructure:"populate_count"`

	WidgetGroup   string        `mapstructure:"widget_group"`
	WidgetTimeout time.Duration `mapstructure:"widget_timeout"`

	Store kv.Config `mapstructure:"store"`
}

// LoadConfig reads .env.<APP_ENV> when present, then resolves every setting
// from the environment (STORE_DRIVER, PROMOTE_INTERVAL, ...) over the
// defaults. Flags bound to v take precedence over both.
func LoadConfig(v *viper.Viper) (*Config, error) {
	appEnv := GetAppEnv()

	switch appEnv {
	case "production":
		if err := godotenv.Load(".env.production"); err == nil {
			fmt.Fprintln(os.Stderr, "Loaded .env.production")
		}
	default:
		if err := godotenv.Load(".env.development"); err == nil {
			fmt.Fprintln(os.Stderr, "Loaded .env.development")
		}
	}

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("corpus_path", "data/bible.json")
	v.SetDefault("book_scope_from", "Matthew")
	v.SetDefault("random_seed", 0)

	v.SetDefault("promote_interval", time.Minute)
	v.SetDefault("populate_count", 7)

	v.SetDefault("widget_group", "group.com.bibleversesapp")
	v.SetDefault("widget_timeout", 5*time.Second)

	v.SetDefault("store.driver", kv.DriverSQLite)
	v.SetDefault("store.sqlite_path", "bible-verses.db")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.redis_address", "")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "bible:")
}

func GetAppEnv() string {
	if value, exists := os.LookupEnv("APP_ENV"); exists {
		return value
	}
	return "development"
}
