// Command weaverctl is the reference CLI over internal/graph,
// internal/freshness, and internal/execution. It replaces the teacher's
// hand-rolled flag parser (internal/cli/sw's strictFlagSet) with
// github.com/spf13/cobra, grounded in 88lin-divinesense/cmd/divinesense's
// cobra/viper wiring (see SPEC_FULL.md's AMBIENT STACK section).
package main
