package paths

import (
	"os"
	"path/filepath"
)

const homeEnvVar = "QUICKTOK_HOME"

// Dir returns the directory holding the .env and config.toml files:
// $QUICKTOK_HOME when set, otherwise ~/.quicktok.
func Dir() (string, error) {
	if ev := os.Getenv(homeEnvVar); len(ev) > 0 {
		return ev, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".quicktok"), nil
}
