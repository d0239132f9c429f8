package envconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/quicktok/quicktok/logutil"
)

const defaultPort = "11500"

var ErrInvalidHostPort = errors.New("invalid port specified in QUICKTOK_HOST")

var (
	// Set via QUICKTOK_DEBUG in the environment
	LogLevel slog.Level
	// Set via QUICKTOK_NUM_THREADS in the environment
	NumThreads int
	// Set via QUICKTOK_VOCAB_SIZE in the environment
	VocabSize int
	// Set via QUICKTOK_MODELS in the environment
	Models string
	// Set via QUICKTOK_HOST in the environment
	Host string
	// Set via QUICKTOK_ORIGINS in the environment
	AllowOrigins []string
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"QUICKTOK_DEBUG":       {"QUICKTOK_DEBUG", LogLevel, "Log verbosity: 1 for debug, 2 for per-merge trace"},
		"QUICKTOK_NUM_THREADS": {"QUICKTOK_NUM_THREADS", NumThreads, "Goroutines counting pairs during training (default 1)"},
		"QUICKTOK_VOCAB_SIZE":  {"QUICKTOK_VOCAB_SIZE", VocabSize, "Target vocabulary size for training (default 512)"},
		"QUICKTOK_MODELS":      {"QUICKTOK_MODELS", Models, "Directory for trained models (default \"models\")"},
		"QUICKTOK_HOST":        {"QUICKTOK_HOST", Host, "Address for the tokenizer server (default 127.0.0.1:11500)"},
		"QUICKTOK_ORIGINS":     {"QUICKTOK_ORIGINS", AllowOrigins, "A comma separated list of allowed origins"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

var defaultAllowOrigins = []string{
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
}

// Clean quotes and spaces from the value. The environment takes precedence
// over the config file.
func clean(key string) string {
	if v := strings.Trim(os.Getenv(key), "\"' "); v != "" {
		return v
	}

	return strings.Trim(GetConfigValue(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	LogLevel = slog.LevelInfo
	if debug := clean("QUICKTOK_DEBUG"); debug != "" {
		LogLevel = parseLogLevel(debug)
	}

	NumThreads = 1
	if n := clean("QUICKTOK_NUM_THREADS"); n != "" {
		val, err := strconv.Atoi(n)
		if err != nil || val <= 0 {
			slog.Error("invalid setting must be greater than zero", "QUICKTOK_NUM_THREADS", n, "error", err)
		} else {
			NumThreads = val
		}
	}

	VocabSize = 512
	if n := clean("QUICKTOK_VOCAB_SIZE"); n != "" {
		val, err := strconv.Atoi(n)
		if err != nil || val < 256 {
			slog.Error("invalid setting must be at least 256", "QUICKTOK_VOCAB_SIZE", n, "error", err)
		} else {
			VocabSize = val
		}
	}

	Models = clean("QUICKTOK_MODELS")
	if Models == "" {
		Models = "models"
	}

	Host = clean("QUICKTOK_HOST")

	AllowOrigins = nil
	if origins := clean("QUICKTOK_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				AllowOrigins = append(AllowOrigins, origin)
			}
		}
	}
	for _, allowOrigin := range defaultAllowOrigins {
		AllowOrigins = append(AllowOrigins,
			fmt.Sprintf("http://%s", allowOrigin),
			fmt.Sprintf("https://%s", allowOrigin),
			fmt.Sprintf("http://%s:*", allowOrigin),
			fmt.Sprintf("https://%s:*", allowOrigin),
		)
	}
}

// parseLogLevel maps QUICKTOK_DEBUG to a level: booleans toggle debug,
// integers raise verbosity one step per increment past info.
func parseLogLevel(s string) slog.Level {
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}

	if n, err := strconv.Atoi(s); err == nil {
		switch {
		case n <= 0:
			return slog.LevelInfo
		case n == 1:
			return slog.LevelDebug
		default:
			return logutil.LevelTrace
		}
	}

	return slog.LevelDebug
}

// HostPort returns the listen address from QUICKTOK_HOST with the default
// host and port filled in.
func HostPort() (string, error) {
	host, port := "127.0.0.1", defaultPort

	s := strings.TrimSpace(Host)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "http://"), "https://")
	if s != "" {
		if h, p, err := net.SplitHostPort(s); err == nil {
			host, port = h, p
		} else {
			host = strings.Trim(s, "[]")
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n < 0 || n > 65535 {
		return "", ErrInvalidHostPort
	}

	return net.JoinHostPort(host, port), nil
}
