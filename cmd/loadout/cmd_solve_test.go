package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/reporting"
)

func TestSolve_Table(t *testing.T) {
	_, pallets, config := fixture(t)

	out, _, err := runCLI(t, "solve", pallets, "--capacity", "50", "--config", config)
	require.NoError(t, err)

	assert.Contains(t, out, "DYNAMIC PROGRAMMING")
	assert.Contains(t, out, "Total profit:   230")
	assert.Contains(t, out, "Pallets loaded: 3")
}

func TestSolve_Algorithms(t *testing.T) {
	_, pallets, config := fixture(t)

	for _, alg := range []string{"bf", "bt", "dp", "greedy", "ilp"} {
		t.Run(alg, func(t *testing.T) {
			out, _, err := runCLI(t, "solve", pallets, "-c", "50", "-a", alg, "-f", "json", "--config", config)
			require.NoError(t, err)

			var r reporting.Results
			require.NoError(t, json.Unmarshal([]byte(out), &r))
			require.Len(t, r.Solutions, 1)
			assert.InDelta(t, 230.0, r.Solutions[0].TotalProfit, 1e-9)
			assert.NoError(t, r.Solutions[0].Check(models.DefaultTolerance))
		})
	}
}

func TestSolve_MaxItems(t *testing.T) {
	_, pallets, config := fixture(t)

	out, _, err := runCLI(t, "solve", pallets, "-c", "50", "-k", "1", "-a", "bt", "-f", "json", "--config", config)
	require.NoError(t, err)

	var r reporting.Results
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Len(t, r.Solutions, 1)
	assert.Equal(t, []int{3}, r.Solutions[0].SelectedIDs())
	require.NotNil(t, r.Container.MaxItems)
	assert.Equal(t, 1, *r.Container.MaxItems)
}

func TestSolve_TrucksFile(t *testing.T) {
	dir, pallets, config := fixture(t)
	trucks := writeFile(t, dir, "trucks.csv", "truck,capacity,pallets\n1,50,\n2,30,1\n")

	tests := []struct {
		name   string
		args   []string
		profit float64
	}{
		{"first truck by default", nil, 230},
		{"explicit truck", []string{"--truck", "2"}, 120},
		{"capacity override", []string{"--truck", "1", "--capacity", "30"}, 160},
		{"pallet limit override", []string{"--truck", "2", "--max-items", "2"}, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"solve", pallets, "--trucks", trucks, "-f", "json", "--config", config}, tt.args...)
			out, _, err := runCLI(t, args...)
			require.NoError(t, err)

			var r reporting.Results
			require.NoError(t, json.Unmarshal([]byte(out), &r))
			assert.InDelta(t, tt.profit, r.Solutions[0].TotalProfit, 1e-9)
		})
	}

	t.Run("pallet limit override keeps the truck", func(t *testing.T) {
		out, _, err := runCLI(t, "solve", pallets, "--trucks", trucks, "--truck", "2", "-k", "3", "-f", "json", "--config", config)
		require.NoError(t, err)

		var r reporting.Results
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, 2, r.Container.ID)
		assert.Equal(t, 30.0, r.Container.Capacity)
		require.NotNil(t, r.Container.MaxItems)
		assert.Equal(t, 3, *r.Container.MaxItems)
		assert.Equal(t, 2, r.Solutions[0].Container.ID)
	})

	_, _, err := runCLI(t, "solve", pallets, "--trucks", trucks, "--truck", "9", "--config", config)
	assert.ErrorContains(t, err, "truck 9 not found")
}

func TestSolve_Rows(t *testing.T) {
	_, pallets, config := fixture(t)

	out, _, err := runCLI(t, "solve", pallets, "-c", "50", "--rows", "1:2", "-f", "json", "--config", config)
	require.NoError(t, err)

	var r reporting.Results
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Len(t, r.Items, 2)
	assert.InDelta(t, 160.0, r.Solutions[0].TotalProfit, 1e-9)
}

func TestSolve_Errors(t *testing.T) {
	dir, pallets, config := fixture(t)
	fractional := writeFile(t, dir, "fractional.csv", "pallet,weight,profit\n1,1.5,2\n")

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"no truck", []string{"solve", pallets}, "either --capacity or --trucks is required"},
		{"unknown algorithm", []string{"solve", pallets, "-c", "10", "-a", "annealing"}, "unknown algorithm"},
		{"bad format", []string{"solve", pallets, "-c", "10", "-f", "yaml"}, "unsupported format"},
		{"missing file", []string{"solve", filepath.Join(dir, "nope.csv"), "-c", "10"}, "loading pallets"},
		{"negative capacity", []string{"solve", pallets, "--capacity=-1"}, "invalid input"},
		{"upload without output", []string{"solve", pallets, "-c", "10", "--upload"}, "--upload requires --output"},
		{"dp on fractional weights", []string{"solve", fractional, "-c", "10", "-a", "dp"}, "Dynamic Programming"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, append(tt.args, "--config", config)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, ExitError, exitCode(err))
		})
	}
}

func TestSolve_OutputAndShow(t *testing.T) {
	dir, pallets, config := fixture(t)
	resultsPath := filepath.Join(dir, "results", "run.json.gz")

	_, stderr, err := runCLI(t, "solve", pallets, "-c", "50", "-a", "greedy", "-o", resultsPath, "--config", config)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Results saved to "+resultsPath)

	r, err := reporting.LoadJSON(resultsPath)
	require.NoError(t, err)
	require.Len(t, r.Solutions, 1)
	assert.Equal(t, "Greedy", r.Solutions[0].Algorithm)

	out, _, err := runCLI(t, "show", resultsPath, "--solutions", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+r.RunID)
	assert.Contains(t, out, "COMPARISON REPORT")
	assert.Contains(t, out, "GREEDY")

	out, _, err = runCLI(t, "show", resultsPath, "-f", "markdown", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "## Loadout Results")

	out, _, err = runCLI(t, "show", resultsPath, "-f", "html", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestSolve_Cache(t *testing.T) {
	dir, pallets, _ := fixture(t)
	cacheDir := filepath.Join(dir, "cache")
	config := writeFile(t, dir, "cache.yaml", "cache:\n  enabled: true\n  dir: "+cacheDir+"\n")

	out, _, err := runCLI(t, "solve", pallets, "-c", "50", "--config", config)
	require.NoError(t, err)
	assert.NotContains(t, out, "(from cache)")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, _, err = runCLI(t, "solve", pallets, "-c", "50", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "(from cache)")

	out, _, err = runCLI(t, "cache", "clear", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared: "+cacheDir)
	_, err = os.Stat(cacheDir)
	assert.True(t, os.IsNotExist(err))
}

func TestSolve_ConfigDefaults(t *testing.T) {
	dir, pallets, _ := fixture(t)
	config := writeFile(t, dir, "defaults.yaml", "defaults:\n  algorithm: greedy\n  format: json\n")

	out, _, err := runCLI(t, "solve", pallets, "-c", "50", "--config", config)
	require.NoError(t, err)

	var r reporting.Results
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Greedy", r.Solutions[0].Algorithm)
}
