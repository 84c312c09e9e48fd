// Package config loads drai settings: defaults, then an optional TOML file,
// then environment variables (a .env file is honoured).
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"
)

// DefaultPath is read when no --config flag is given; its absence is fine.
const DefaultPath = "drai.toml"

type Config struct {
	Server  Server  `toml:"server"`
	Batch   Batch   `toml:"batch"`
	Extract Extract `toml:"extract"`
	Fetch   Fetch   `toml:"fetch"`
	Archive Archive `toml:"archive"`
	Log     Log     `toml:"log"`
}

type Server struct {
	Listen string `toml:"listen"`
	Inbox  string `toml:"inbox"`
}

type Batch struct {
	Workers  int    `toml:"workers"`
	MaxBytes int64  `toml:"max_bytes"`
	Dedup    string `toml:"dedup"` // "first" or "last"
}

type Extract struct {
	AreasFile   string `toml:"areas_file"`
	DefaultYear int    `toml:"default_year"`
}

type Fetch struct {
	UserAgent       string   `toml:"user_agent"`
	RequestsPerHost float64  `toml:"requests_per_host"`
	RobotsTimeout   Duration `toml:"robots_timeout"`
}

type Archive struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type Log struct {
	Level string `toml:"level"`
	Dev   bool   `toml:"dev"`
}

// Duration reads "5s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{Listen: ":8080"},
		Batch: Batch{
			Workers:  4,
			MaxBytes: 32 << 20,
			Dedup:    "first",
		},
		Extract: Extract{DefaultYear: 2025},
		Fetch: Fetch{
			UserAgent:       "drai-go/1.0",
			RequestsPerHost: 1,
			RobotsTimeout:   Duration{5 * time.Second},
		},
		Archive: Archive{
			Database:   "drai",
			Collection: "weekly_reports",
		},
		Log: Log{Level: "info"},
	}
}

// Load builds the configuration. A missing file at path is not an error
// when path is DefaultPath or empty.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, eris.Wrapf(err, "decode config %s", path)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, eris.Wrapf(err, "read config %s", path)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return eris.Wrapf(err, "env %s", key)
		}
		*dst = n
		return nil
	}

	str("DRAI_LISTEN", &c.Server.Listen)
	str("DRAI_LOG_LEVEL", &c.Log.Level)
	str("DRAI_AREAS_FILE", &c.Extract.AreasFile)
	str("DRAI_USER_AGENT", &c.Fetch.UserAgent)
	str("DRAI_DEDUP", &c.Batch.Dedup)
	str("MONGODB_URI", &c.Archive.URI)
	str("MONGO_DB", &c.Archive.Database)
	str("MONGO_COLLECTION", &c.Archive.Collection)
	if err := num("DRAI_WORKERS", &c.Batch.Workers); err != nil {
		return err
	}
	if err := num("DRAI_DEFAULT_YEAR", &c.Extract.DefaultYear); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		c.Batch.Workers = 1
	}
	return nil
}
