package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const diamondManifest = `{
  "schema_version": "1.0.0",
  "graph": {
    "nodes": [
      {"id": "compile", "command": "true", "outputs": ["out/compile.stamp"]},
      {"id": "test", "command": "true", "outputs": ["out/test.stamp"]}
    ],
    "edges": [
      {"from": "compile", "to": "test"}
    ]
  },
  "metadata": {"name": "diamond"}
}`

func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(path, []byte(diamondManifest), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, _ := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidate_AcceptsWellFormedManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)

	out, err := runCLI(t, "validate", "--graph", manifest, "--workdir", dir)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if out != "ok: 2 nodes\n" {
		t.Fatalf("output = %q, want %q", out, "ok: 2 nodes\n")
	}
}

func TestValidate_RejectsMissingGraphFlag(t *testing.T) {
	_, err := runCLI(t, "validate")
	if err == nil {
		t.Fatalf("expected error for missing --graph")
	}
	if exitCodeFor(err) != ExitValidationError {
		t.Fatalf("exit code = %d, want %d", exitCodeFor(err), ExitValidationError)
	}
}

func TestValidate_RejectsUnknownManifestField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	bad := `{"schema_version": "1.0.0", "graph": {"nodes": [], "edges": []}, "bogus": true}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := runCLI(t, "validate", "--graph", path, "--workdir", dir)
	if err == nil {
		t.Fatalf("expected error for unknown manifest field")
	}
	if exitCodeFor(err) != ExitValidationError {
		t.Fatalf("exit code = %d, want %d", exitCodeFor(err), ExitValidationError)
	}
}

func TestRun_ExecutesDiamondAndWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	snapPath := filepath.Join(dir, "snap.json")

	out, err := runCLI(t, "run",
		"--graph", manifest,
		"--workdir", dir,
		"--snapshot-path", snapPath,
		"--concurrency", "2",
	)
	if err != nil {
		t.Fatalf("run: %v, output: %s", err, out)
	}
	if _, statErr := os.Stat(snapPath); statErr != nil {
		t.Fatalf("expected snapshot at %q: %v", snapPath, statErr)
	}
}

func TestRun_RejectsMissingGraphFlag(t *testing.T) {
	_, err := runCLI(t, "run")
	if err == nil {
		t.Fatalf("expected error for missing --graph")
	}
	if exitCodeFor(err) != ExitValidationError {
		t.Fatalf("exit code = %d, want %d", exitCodeFor(err), ExitValidationError)
	}
}

func TestFreezeThenInspect_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	snapPath := filepath.Join(dir, "snap.json")

	if _, err := runCLI(t, "freeze", "--graph", manifest, "--workdir", dir, "--snapshot-path", snapPath); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	out, err := runCLI(t, "inspect", "--graph", manifest, "--workdir", dir, "--snapshot-path", snapPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty inspect output")
	}
}

func TestPluginsList_RequiresPluginDirOrDefault(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "plugins", "list", "--plugin-dir", dir)
	if err != nil {
		t.Fatalf("plugins list: %v, output: %s", err, out)
	}
}
