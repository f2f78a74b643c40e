package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	dir, pallets, config := fixture(t)
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json.gz")
	c := filepath.Join(dir, "c.json")

	_, _, err := runCLI(t, "solve", pallets, "-c", "50", "-a", "dp", "-o", a, "--config", config)
	require.NoError(t, err)
	_, _, err = runCLI(t, "solve", pallets, "-c", "50", "-a", "dp", "-o", b, "--config", config)
	require.NoError(t, err)
	_, _, err = runCLI(t, "solve", pallets, "-c", "30", "-a", "dp", "-o", c, "--config", config)
	require.NoError(t, err)

	out, _, err := runCLI(t, "diff", a, b, "--config", config)
	require.NoError(t, err)
	assert.Equal(t, "No differences.\n", out)

	out, _, err = runCLI(t, "diff", a, c, "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "~ /container/capacity: 50 -> 30")

	out, _, err = runCLI(t, "diff", a, c, "--format", "json", "--config", config)
	require.NoError(t, err)
	var patch []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &patch))
	assert.NotEmpty(t, patch)

	_, _, err = runCLI(t, "diff", a, filepath.Join(dir, "missing.json"), "--config", config)
	assert.ErrorContains(t, err, "failed to load")
}

func TestSchema(t *testing.T) {
	out, _, err := runCLI(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "loadout results", schema["title"])

	out, _, err = runCLI(t, "schema", "--project-config")
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema"`)
	assert.Contains(t, out, "redis_addr")
}

func TestSchema_Validate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "defaults:\n  algorithm: bt\n  workers: 2\n")
	bad := writeFile(t, dir, "bad.yaml", "defaults:\n  workers: 0\ncache:\n  backend: memcached\n")

	out, _, err := runCLI(t, "schema", "--validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, _, err = runCLI(t, "schema", "--validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "/defaults/workers")
	assert.Contains(t, out, "/cache/backend")

	_, _, err = runCLI(t, "schema", "--validate", filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}
