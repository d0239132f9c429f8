package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/quicktok/quicktok/paths"
)

// LoadDotEnv sets variables from .env in the quicktok directory that are not
// already in the environment. A missing file is ignored.
func LoadDotEnv() error {
	dir, err := paths.Dir()
	if err != nil {
		return err
	}

	name := filepath.Join(dir, ".env")
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	for k, v := range vars {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}

		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}

	return nil
}
