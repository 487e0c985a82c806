package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is weaverctl's merged configuration, after flag/env/default layering
// and strict validation. Field names mirror the flags registered by
// RegisterFlags below.
type Config struct {
	WorkDir          string
	CacheDir         string
	Concurrency      int
	SchedulerBackend string
	SnapshotPath     string
}

// ErrInvalidConfig is wrapped by every validation failure, mirroring the
// teacher's internal/projectintegration/engine/config.ErrInvalidConfig
// sentinel-plus-wrap shape.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// allowedKeys enumerates every configuration key weaverctl recognizes.
// Load rejects anything else, the same strictness the teacher's config.Parse
// applies to its JSON object ("Any unknown field is rejected").
var allowedKeys = map[string]struct{}{
	"workdir":           {},
	"cachedir":          {},
	"concurrency":       {},
	"scheduler_backend": {},
	"snapshot_path":     {},
}

// RegisterFlags registers weaverctl's persistent flags on flags and binds
// them into v, along with defaults and the WEAVEFLOW_-prefixed environment
// layer. Grounded in 88lin-divinesense/cmd/divinesense/main.go's
// viper.SetDefault/PersistentFlags/BindPFlag/AutomaticEnv sequence.
func RegisterFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetDefault("workdir", ".")
	v.SetDefault("cachedir", ".weaveflow/cache")
	v.SetDefault("concurrency", 4)
	v.SetDefault("scheduler_backend", "pool")
	v.SetDefault("snapshot_path", ".weaveflow/snapshot.json")

	flags.String("workdir", ".", "project root weaverctl operates against")
	flags.String("cachedir", ".weaveflow/cache", "directory for scheduler-local cache state (not read by any command)")
	flags.Int("concurrency", 4, "number of worker-pool goroutines")
	flags.String("scheduler-backend", "pool", `task scheduler backend, validated as "pool" or "inline" (commands always use the worker pool)`)
	flags.String("snapshot-path", ".weaveflow/snapshot.json", "path to read/write freeze/thaw snapshots")

	binds := map[string]string{
		"workdir":           "workdir",
		"cachedir":          "cachedir",
		"concurrency":       "concurrency",
		"scheduler_backend": "scheduler-backend",
		"snapshot_path":     "snapshot-path",
	}
	for key, flagName := range binds {
		if err := v.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			return fmt.Errorf("config: bind flag %q: %w", flagName, err)
		}
	}

	v.SetEnvPrefix("weaveflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return nil
}

// Load reads the layered configuration out of v (flags > env > defaults,
// viper's own precedence; RegisterFlags sets up no config file) and
// validates it.
func Load(v *viper.Viper) (Config, error) {
	for _, key := range v.AllKeys() {
		if _, ok := allowedKeys[key]; !ok {
			return Config{}, fmt.Errorf("%w: unknown field %q", ErrInvalidConfig, key)
		}
	}

	cfg := Config{
		WorkDir:          v.GetString("workdir"),
		CacheDir:         v.GetString("cachedir"),
		Concurrency:      v.GetInt("concurrency"),
		SchedulerBackend: v.GetString("scheduler_backend"),
		SnapshotPath:     v.GetString("snapshot_path"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.WorkDir) == "" {
		return fmt.Errorf("%w: workdir is required", ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	switch c.SchedulerBackend {
	case "pool", "inline":
	default:
		return fmt.Errorf("%w: scheduler_backend must be \"pool\" or \"inline\", got %q", ErrInvalidConfig, c.SchedulerBackend)
	}
	if strings.TrimSpace(c.SnapshotPath) == "" {
		return fmt.Errorf("%w: snapshot_path is required", ErrInvalidConfig)
	}
	return nil
}
