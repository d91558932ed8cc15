package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sweeps-prefill/internal/export"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./logs
seed_file: ./SSCW.txt
output_dir: ./out
organization: PVRC
formats: [N1MM, trlog, n1mm]
outputs:
  n1mm: SS_prefill.txt
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "./logs", cfg.InputDir)
	assert.Equal(t, "./SSCW.txt", cfg.SeedFile)
	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, "PVRC", cfg.Organization)
	assert.Equal(t, "WriteLog", cfg.Program)
	assert.Equal(t, []string{"n1mm", "trlog"}, cfg.Formats)
	assert.Equal(t, "SS_prefill.txt", cfg.OutputFile("n1mm"))
	assert.Equal(t, "TRMASTER.ASC", cfg.OutputFile("trlog"))
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, env := range []string{EnvOutputDir, EnvEncoding, EnvLogLevel, EnvLogFormat} {
		t.Setenv(env, "")
	}

	cfg, err := Load("", false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, export.DefaultNames(), cfg.Formats)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "UTF-8", cfg.Encoding)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "formats: [n1mm\n")
	_, err := Load(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvOutputDir, "/tmp/prefill")
	t.Setenv(EnvEncoding, "cp1252")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")

	path := writeConfig(t, "output_dir: ./out\nencoding: UTF-8\n")
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/prefill", cfg.OutputDir)
	assert.Equal(t, "cp1252", cfg.Encoding)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown format":  "formats: [n1mm, adif]\n",
		"bad encoding":    "encoding: EBCDIC\n",
		"unknown output":  "outputs:\n  cabrillo: x.log\n",
		"empty file name": "outputs:\n  n1mm: \"  \"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestExportOptions(t *testing.T) {
	cfg := Default()
	cfg.Organization = "PVRC"
	cfg.Program = "WL7"

	now := time.Date(2024, time.November, 2, 21, 0, 0, 0, time.UTC)
	opts := cfg.ExportOptions(now)
	assert.Equal(t, now, opts.Generated)
	assert.Equal(t, "PVRC", opts.Organization)
	assert.Equal(t, "WL7", opts.Program)
}
