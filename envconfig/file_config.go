package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	qpaths "github.com/quicktok/quicktok/paths"
)

// Config represents the TOML configuration structure
type Config struct {
	Server struct {
		Host    string   `toml:"host"`
		Origins []string `toml:"origins"`
	} `toml:"server"`

	Training struct {
		NumThreads int    `toml:"num_threads"`
		VocabSize  int    `toml:"vocab_size"`
		Models     string `toml:"models"`
	} `toml:"training"`

	Logging struct {
		Debug string `toml:"debug"`
	} `toml:"logging"`
}

var (
	configOnce sync.Once
	config     *Config
	configPath string
)

// GetConfigPaths returns the list of possible config file paths, most
// specific first.
func GetConfigPaths() []string {
	var paths []string
	if p := os.Getenv("QUICKTOK_CONFIG"); p != "" {
		paths = append(paths, p)
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		paths = append(paths, filepath.Join(xdgConfig, "quicktok", "config.toml"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "quicktok", "config.toml"))
	}

	if dir, err := qpaths.Dir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}

	return paths
}

// loadConfig loads the first available configuration file
func loadConfig() (*Config, string, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			var cfg Config
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, "", fmt.Errorf("error parsing config file %s: %w", path, err)
			}
			return &cfg, path, nil
		}
	}
	return nil, "", nil
}

// GetConfigValue returns the value for a given environment variable key from the config file
func GetConfigValue(key string) string {
	configOnce.Do(func() {
		var err error
		config, configPath, err = loadConfig()
		if err != nil {
			slog.Warn("failed to load config file", "error", err)
		} else if config != nil {
			slog.Debug("loaded config file", "path", configPath)
		}
	})

	if config == nil {
		return ""
	}

	switch key {
	case "QUICKTOK_HOST":
		return config.Server.Host
	case "QUICKTOK_ORIGINS":
		return strings.Join(config.Server.Origins, ",")
	case "QUICKTOK_NUM_THREADS":
		if config.Training.NumThreads > 0 {
			return fmt.Sprintf("%d", config.Training.NumThreads)
		}
	case "QUICKTOK_VOCAB_SIZE":
		if config.Training.VocabSize > 0 {
			return fmt.Sprintf("%d", config.Training.VocabSize)
		}
	case "QUICKTOK_MODELS":
		return config.Training.Models
	case "QUICKTOK_DEBUG":
		return config.Logging.Debug
	}

	return ""
}

// resetConfigFile forgets the loaded file so the next lookup searches again.
func resetConfigFile() {
	configOnce = sync.Once{}
	config, configPath = nil, ""
}

// GenerateExampleConfig returns a commented example TOML configuration
func GenerateExampleConfig() string {
	return `# quicktok configuration file
# Environment variables (QUICKTOK_*) take precedence over these values.

[server]
# Address for "quicktok serve" (default: "127.0.0.1:11500")
host = "127.0.0.1:11500"
# Additional allowed CORS origins
origins = ["http://localhost:3000"]

[training]
# Goroutines counting pairs during training (default: 1)
num_threads = 4
# Target vocabulary size, at least 256 (default: 512)
vocab_size = 2048
# Directory for trained models (default: "models")
models = "models"

[logging]
# "1" for debug, "2" for per-merge trace (default: "0")
debug = "0"
`
}
