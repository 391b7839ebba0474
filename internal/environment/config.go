// Package environment resolves the runtime configuration: built-in defaults,
// then an optional ranker.toml, then environment variables (a .env file is
// honored when present).
package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/programme-lv/ranker/internal/xdg"
)

const (
	// TimeoutMin is the smallest accepted per-test budget in seconds.
	TimeoutMin = 0.1
	// TimeoutMultiple scales a previously observed elapsed time into an
	// adaptive per-test budget.
	TimeoutMultiple = 4.0
)

type Config struct {
	Dataset            string  `toml:"dataset"`
	TimeoutSec         float64 `toml:"timeout_sec"`
	TimeRatioThreshold float64 `toml:"time_ratio_threshold"`
	PoolSize           int     `toml:"pool_size"`
	Workers            int     `toml:"workers"`
	PythonBin          string  `toml:"python_bin"`

	// Progress selects the run-progress sink: term, nats, sqs or none.
	Progress    string `toml:"progress"`
	NatsURL     string `toml:"nats_url"`
	NatsSubject string `toml:"nats_subject"`
	SqsQueueURL string `toml:"sqs_queue_url"`
	AwsRegion   string `toml:"aws_region"`
}

func defaults() *Config {
	return &Config{
		Dataset:            string(DatasetHEPlus),
		TimeoutSec:         30,
		TimeRatioThreshold: 1.0,
		PoolSize:           5,
		Workers:            8,
		PythonBin:          "python3",
		Progress:           "term",
		NatsSubject:        "ranker.progress",
		AwsRegion:          "eu-central-1",
	}
}

// Read resolves the configuration. A missing config file is not an error.
func Read() (*Config, error) {
	cfg := defaults()

	path := configFilePath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	applyEnv(cfg)

	if _, err := ParseDataset(cfg.Dataset); err != nil {
		return nil, err
	}
	if cfg.TimeoutSec < TimeoutMin {
		return nil, fmt.Errorf("timeout %.3fs is below the %.1fs minimum", cfg.TimeoutSec, TimeoutMin)
	}
	if cfg.TimeRatioThreshold < 1.0 {
		return nil, fmt.Errorf("time ratio threshold %.3f must be >= 1.0", cfg.TimeRatioThreshold)
	}
	if cfg.PoolSize < 1 {
		return nil, fmt.Errorf("pool size %d must be >= 1", cfg.PoolSize)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("worker count %d must be >= 1", cfg.Workers)
	}
	return cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("RANKER_CONFIG"); p != "" {
		return p
	}
	dirs := xdg.New()
	return filepath.Join(dirs.AppConfigDir("ranker"), "ranker.toml")
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RANKER_DATASET"); v != "" {
		cfg.Dataset = v
	}
	if v := os.Getenv("RANKER_TIMEOUT_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TimeoutSec = f
		}
	}
	if v := os.Getenv("RANKER_TIME_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TimeRatioThreshold = f
		}
	}
	if v := os.Getenv("RANKER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PoolSize = n
		}
	}
	if v := os.Getenv("RANKER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("RANKER_PYTHON_BIN"); v != "" {
		cfg.PythonBin = v
	}
	if v := os.Getenv("RANKER_PROGRESS"); v != "" {
		cfg.Progress = v
	}
	if v := os.Getenv("RANKER_NATS_URL"); v != "" {
		cfg.NatsURL = v
	}
	if v := os.Getenv("RANKER_NATS_SUBJECT"); v != "" {
		cfg.NatsSubject = v
	}
	if v := os.Getenv("RANKER_SQS_QUEUE_URL"); v != "" {
		cfg.SqsQueueURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AwsRegion = v
	}
}
