package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationError(t *testing.T) {
	err := &VerificationError{
		Message: "verification failed: 1 mismatch(es)",
	}

	assert.Equal(t, "verification failed: 1 mismatch(es)", err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"VerificationError", &VerificationError{Message: "mismatch"}, ExitVerifyMismatch},
		{"wrapped VerificationError", fmt.Errorf("verify: %w", &VerificationError{Message: "mismatch"}), ExitVerifyMismatch},
		{"joined VerificationError", errors.Join(&VerificationError{Message: "mismatch"}, errors.New("additional context")), ExitVerifyMismatch},
		{"regular error", errors.New("config error"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// fixture writes a small instance and an empty config into a temp dir.
// The optimum for capacity 50 is 230 (pallets 1, 2 and 4).
func fixture(t *testing.T) (dir, pallets, config string) {
	t.Helper()
	dir = t.TempDir()
	pallets = writeFile(t, dir, "pallets.csv", "pallet,weight,profit\n1,10,60\n2,20,100\n3,30,120\n4,15,70\n")
	config = writeFile(t, dir, ".loadout.yaml", "")
	return dir, pallets, config
}

func TestRoot_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"solve", "compare", "verify", "bench", "generate", "show", "diff", "schema", "cache", "menu"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir, pallets, _ := fixture(t)
	bad := writeFile(t, dir, "bad.yaml", "defaults:\n  algorithm: quantum\n")

	_, _, err := runCLI(t, "solve", pallets, "-c", "50", "--config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .loadout.yaml")
	assert.Equal(t, ExitError, exitCode(err))
}
