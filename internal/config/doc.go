// Package config loads weaverctl's configuration, layering flag, environment,
// and default sources via github.com/spf13/viper; no configuration file is
// read (grounded in
// 88lin-divinesense/cmd/divinesense/main.go's viper.SetDefault/BindPFlag/
// AutomaticEnv wiring), then validates the merged result with the teacher's
// strict, unknown-field-rejecting style from
// internal/projectintegration/engine/config/config.go.
package config
