package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds the CLI defaults that can come from the environment or a .env
// file. Explicit flags still win over both.
type Env struct {
	DataDir string
	FPS     int
	Addr    string
}

const (
	EnvDataDir = "POCKETPHYS_DATA"
	EnvFPS     = "POCKETPHYS_FPS"
	EnvAddr    = "POCKETPHYS_ADDR"
)

func DefaultEnv() Env {
	return Env{
		DataDir: ".pocketphys",
		FPS:     30,
		Addr:    "localhost:8080",
	}
}

// LoadEnv reads the given dotenv files (".env" when none are given) without
// modifying the process environment. Missing files are ignored; process
// variables take precedence over file values.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	values := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return DefaultEnv(), err
		}
		for k, v := range m {
			values[k] = v
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return values[key]
	}

	env := DefaultEnv()
	if v := lookup(EnvDataDir); v != "" {
		env.DataDir = v
	}
	if v := lookup(EnvFPS); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			env.FPS = n
		}
	}
	if v := lookup(EnvAddr); v != "" {
		env.Addr = v
	}
	return env, nil
}
