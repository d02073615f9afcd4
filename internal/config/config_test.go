package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "careerlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, int64(20<<20), cfg.Upload.MaxBytes)
				assert.Equal(t, 4, cfg.Upload.MaxConcurrent)
				assert.Equal(t, 50000, cfg.Upload.MaxRows)
				assert.Equal(t, 10, cfg.Analysis.DefaultTopN)
				assert.Equal(t, 100, cfg.Analysis.MaxTopN)
				assert.Equal(t, 0.5, cfg.Analysis.Widths["cgpa"])
			},
		},
		{
			name: "yaml overlays defaults",
			yaml: "server:\n  port: 9000\n  read_timeout: 5s\nupload:\n  max_concurrent: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 2, cfg.Upload.MaxConcurrent)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "env wins over yaml",
			yaml: "server:\n  port: 9000\n",
			env: map[string]string{
				"CAREERLENS_SERVER_PORT":     "9100",
				"CAREERLENS_ANALYSIS_WIDTHS": "cgpa:0.25,salary:2",
				"CAREERLENS_LOGGING_LEVEL":   "DEBUG",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, map[string]float64{"cgpa": 0.25, "salary": 2}, cfg.Analysis.Widths)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"CAREERLENS_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "default top-n above max",
			yaml:    "analysis:\n  default_top_n: 500\n",
			wantErr: "outside 1..100",
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"CAREERLENS_TELEMETRY_TRACE_EXPORTER": "otlp"},
			wantErr: "unsupported trace exporter",
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"CAREERLENS_UPLOAD_MAX_BYTES": "lots"},
			wantErr: "failed to load config from env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeYAML(t, tt.yaml)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	t.Setenv("CAREERLENS_CONFIG_FILE", writeYAML(t, "upload:\n  max_rows: 10\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Upload.MaxRows)
}

func TestFileLoggingGetsDefaultPath(t *testing.T) {
	cfg, err := LoadFile(writeYAML(t, "logging:\n  output: file\n  file_path: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}
