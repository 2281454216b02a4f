package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "swarmgate.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SWARMGATE_PORT")
	setString(&cfg.Server.CORSOrigin, "SWARMGATE_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "SWARMGATE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SWARMGATE_LOG_SERVICE")

	setInt(&cfg.Admission.MaxConcurrentItems, "SWARMGATE_ADMISSION_MAX_ITEMS")
	setInt(&cfg.Admission.MaxOpenWindows, "SWARMGATE_ADMISSION_MAX_WINDOWS")
	setFloat64(&cfg.Admission.BaseCost, "SWARMGATE_ADMISSION_BASE_COST")
	setFloat64(&cfg.Admission.PerItemCost, "SWARMGATE_ADMISSION_PER_ITEM_COST")
	setFloat64(&cfg.Admission.PerItemOverhead, "SWARMGATE_ADMISSION_PER_ITEM_OVERHEAD")
	setFloat64(&cfg.Admission.OverheadCap, "SWARMGATE_ADMISSION_OVERHEAD_CAP")
	setFloat64(&cfg.Admission.BudgetWarnThreshold, "SWARMGATE_ADMISSION_WARN_THRESHOLD")

	setInt(&cfg.Strategy.DirectMax, "SWARMGATE_STRATEGY_DIRECT_MAX")
	setInt(&cfg.Strategy.ParallelMax, "SWARMGATE_STRATEGY_PARALLEL_MAX")
	setInt(&cfg.Strategy.StrategicMax, "SWARMGATE_STRATEGY_STRATEGIC_MAX")
	setInt(&cfg.Strategy.DomainBreadth, "SWARMGATE_STRATEGY_DOMAIN_BREADTH")

	setInt(&cfg.Planner.MaxBatchSize, "SWARMGATE_PLANNER_MAX_BATCH")
	setInt(&cfg.Planner.MinBatchSize, "SWARMGATE_PLANNER_MIN_BATCH")
	setInt(&cfg.Planner.MaxComplexBatchSize, "SWARMGATE_PLANNER_MAX_COMPLEX_BATCH")
	setDuration(&cfg.Planner.CoordinationOverhead, "SWARMGATE_PLANNER_COORD_OVERHEAD")
	setDuration(&cfg.Planner.InterBatchOverhead, "SWARMGATE_PLANNER_INTERBATCH_OVERHEAD")

	setFloat64(&cfg.Learner.InitialConfidence, "SWARMGATE_LEARNER_INITIAL_CONFIDENCE")
	setFloat64(&cfg.Learner.MaxConfidence, "SWARMGATE_LEARNER_MAX_CONFIDENCE")
	setFloat64(&cfg.Learner.UsageWeight, "SWARMGATE_LEARNER_USAGE_WEIGHT")
	setFloat64(&cfg.Learner.SuccessWeight, "SWARMGATE_LEARNER_SUCCESS_WEIGHT")

	setDuration(&cfg.Insights.TTL, "SWARMGATE_INSIGHTS_TTL")
	setDuration(&cfg.Insights.RecentWindow, "SWARMGATE_INSIGHTS_RECENT_WINDOW")

	setDuration(&cfg.Analytics.CacheTTL, "SWARMGATE_ANALYTICS_CACHE_TTL")
	setInt64(&cfg.Analytics.CacheSizeMB, "SWARMGATE_ANALYTICS_CACHE_SIZE_MB")
	setInt(&cfg.Analytics.TopPatterns, "SWARMGATE_ANALYTICS_TOP_PATTERNS")

	setString(&cfg.Storage.Backend, "SWARMGATE_STORAGE_BACKEND")
	setString(&cfg.Storage.Dir, "SWARMGATE_STORAGE_DIR")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "SWARMGATE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "SWARMGATE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "SWARMGATE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "SWARMGATE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "SWARMGATE_PG_HEALTH_CHECK")

	setBool(&cfg.NATS.Enabled, "SWARMGATE_NATS_ENABLED")
	setString(&cfg.NATS.URL, "NATS_URL")
}

// validate checks that required fields are set and thresholds are coherent.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Admission.MaxConcurrentItems < 1 {
		return errors.New("admission.max_concurrent_items must be >= 1")
	}
	if cfg.Admission.MaxOpenWindows < 1 {
		return errors.New("admission.max_open_windows must be >= 1")
	}
	if cfg.Strategy.DirectMax < 1 {
		return errors.New("strategy.direct_max must be >= 1")
	}
	if cfg.Strategy.ParallelMax < cfg.Strategy.DirectMax {
		return errors.New("strategy.parallel_max must be >= strategy.direct_max")
	}
	if cfg.Strategy.StrategicMax < cfg.Strategy.ParallelMax {
		return errors.New("strategy.strategic_max must be >= strategy.parallel_max")
	}
	if cfg.Planner.MinBatchSize < 1 {
		return errors.New("planner.min_batch_size must be >= 1")
	}
	if cfg.Planner.MaxBatchSize < cfg.Planner.MinBatchSize {
		return errors.New("planner.max_batch_size must be >= planner.min_batch_size")
	}
	switch cfg.Storage.Backend {
	case "jsonfile", "postgres", "memory":
	default:
		return fmt.Errorf("storage.backend must be jsonfile, postgres, or memory, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "jsonfile" && cfg.Storage.Dir == "" {
		return errors.New("storage.dir is required for the jsonfile backend")
	}
	if cfg.Storage.Backend == "postgres" && cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required for the postgres backend")
	}
	if cfg.NATS.Enabled && cfg.NATS.URL == "" {
		return errors.New("nats.url is required when nats.enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
