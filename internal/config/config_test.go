package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func newBoundViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := RegisterFlags(v, flags); err != nil {
		t.Fatalf("RegisterFlags: %v", err)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newBoundViper(t)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkDir != "." {
		t.Fatalf("WorkDir = %q, want \".\"", cfg.WorkDir)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.SchedulerBackend != "pool" {
		t.Fatalf("SchedulerBackend = %q, want \"pool\"", cfg.SchedulerBackend)
	}
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	v := newBoundViper(t)
	t.Setenv("WEAVEFLOW_CONCURRENCY", "16")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 16 {
		t.Fatalf("Concurrency = %d, want 16", cfg.Concurrency)
	}
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := RegisterFlags(v, flags); err != nil {
		t.Fatalf("RegisterFlags: %v", err)
	}
	t.Setenv("WEAVEFLOW_CONCURRENCY", "16")

	if err := flags.Set("concurrency", "32"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Concurrency != 32 {
		t.Fatalf("Concurrency = %d, want 32", cfg.Concurrency)
	}
}

func TestLoad_RejectsInvalidSchedulerBackend(t *testing.T) {
	v := newBoundViper(t)
	v.Set("scheduler_backend", "bogus")

	if _, err := Load(v); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestLoad_RejectsNonPositiveConcurrency(t *testing.T) {
	v := newBoundViper(t)
	v.Set("concurrency", 0)

	if _, err := Load(v); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	v := newBoundViper(t)
	v.Set("unknown_field", "x")

	if _, err := Load(v); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
