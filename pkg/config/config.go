package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	ServerPort      string `koanf:"server_port"`
	Environment     string `koanf:"environment"`
	FirebaseProject string `koanf:"firebase_project_id"`
	FirebaseAPIKey  string `koanf:"firebase_api_key"`
	CredentialsFile string `koanf:"firebase_credentials_file"`
	CredentialsJSON string `koanf:"firebase_credentials_json"`
	StoreDriver     string `koanf:"store_driver"`
	RedisURL        string `koanf:"redis_url"`

	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIModel   string `koanf:"openai_model"`
	OpenAIBaseURL string `koanf:"openai_base_url"`

	NotificationTTL  time.Duration `koanf:"notification_ttl"`
	SessionIdleTTL   time.Duration `koanf:"session_idle_ttl"`
	EnableRoleSwitch bool          `koanf:"enable_role_switch"`
	SeedOnStart      bool          `koanf:"seed_on_start"`
	DefaultLocale    string        `koanf:"default_locale"`
}

func defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		Environment:     "development",
		FirebaseProject: "artisianx",
		StoreDriver:     StoreFirestore,
		OpenAIModel:     "gpt-4o-mini",
		OpenAIBaseURL:   "https://api.openai.com/v1",
		NotificationTTL: 6 * time.Second,
		SessionIdleTTL:  30 * time.Minute,
		SeedOnStart:     true,
		DefaultLocale:   "en",
	}
}

// Load reads .env, then an optional YAML file named by CONFIG_FILE, then the
// process environment. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(key), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	cfg := defaults()
	_, roleSwitchSet := k.Raw()["enable_role_switch"]
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if !roleSwitchSet {
		cfg.EnableRoleSwitch = cfg.IsDevelopment()
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = 6 * time.Second
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
