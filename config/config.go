package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP          HTTPConfig    `yaml:"http"`
	TokenSecret   string        `yaml:"token_secret" env:"API_TOKEN_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
	RoomTTL       time.Duration `yaml:"room_ttl" env:"ROOM_TTL" env-default:"60m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL" env-default:"1m"`

	// RoomsRequireOwner makes room deletion reject callers that do not own the
	// room. Off by default: any authenticated caller may delete any room.
	RoomsRequireOwner bool `yaml:"rooms_require_owner" env:"ROOMS_REQUIRE_OWNER" env-default:"false"`

	LiveKit LiveKitConfig `yaml:"livekit"`
	Agents  []AgentConfig `yaml:"agents"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
}

type LiveKitConfig struct {
	URL       string        `yaml:"url" env:"LIVEKIT_URL"`
	APIKey    string        `yaml:"api_key" env:"LIVEKIT_API_KEY"`
	APISecret string        `yaml:"api_secret" env:"LIVEKIT_API_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"LIVEKIT_TOKEN_TTL" env-default:"1h"`
}

type AgentConfig struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()

	var cfg Config

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			panic("config file does not exist: " + configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			panic("failed to read config: " + err.Error())
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			panic("failed to read config from env: " + err.Error())
		}
	}

	if len(cfg.Agents) == 0 {
		cfg.Agents = []AgentConfig{{Name: "peppa", DisplayName: "Peppa Pig"}}
	}

	return &cfg
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	if !flag.Parsed() {
		flag.StringVar(&res, "config", "", "path to config file")
	}
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
