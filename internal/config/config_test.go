package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dashcsv/internal/errors"
)

var envVars = []string{
	"DASHCSV_LOGGING_LEVEL",
	"DASHCSV_LOGGING_FORMAT",
	"DASHCSV_LOGGING_OUTPUT",
	"DASHCSV_PATHS_STATS_DIR",
	"DASHCSV_PATHS_OUTPUT_DIR",
	"DASHCSV_EXPORT_STRICT",
	"DASHCSV_EXPORT_PARALLEL",
	"DASHCSV_EXPORT_WORKERS",
	"DASHCSV_EXPORT_REPORTS",
	"DASHCSV_TELEMETRY_TRACE_EXPORTER",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range envVars {
		if old, ok := os.LookupEnv(envVar); ok {
			require.NoError(t, os.Unsetenv(envVar))
			t.Cleanup(func() { os.Setenv(envVar, old) })
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "dashcsv.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	return configFile
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, DefaultStatsDir, cfg.Paths.StatsDir)
				assert.Equal(t, DefaultDataDir, cfg.Paths.DataDir)
				assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)
				assert.True(t, cfg.Export.Strict)
				assert.False(t, cfg.Export.Parallel)
				assert.Equal(t, DefaultWorkers, cfg.Export.Workers)
				assert.False(t, cfg.Export.BOMPrefix)
				assert.Empty(t, cfg.Export.Reports)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "environment variables",
			env: map[string]string{
				"DASHCSV_LOGGING_LEVEL":   "debug",
				"DASHCSV_EXPORT_STRICT":   "false",
				"DASHCSV_EXPORT_PARALLEL": "true",
				"DASHCSV_EXPORT_WORKERS":  "8",
				"DASHCSV_EXPORT_REPORTS":  "publishers,registry",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.False(t, cfg.Export.Strict)
				assert.True(t, cfg.Export.Parallel)
				assert.Equal(t, 8, cfg.Export.Workers)
				assert.Equal(t, []string{"publishers", "registry"}, cfg.Export.Reports)
			},
		},
		{
			name: "config file",
			file: `
logging:
  level: warn
  format: text
paths:
  stats_dir: /srv/stats
export:
  strict: false
  workbook: true
  use_crlf: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, "/srv/stats", cfg.Paths.StatsDir)
				// untouched keys keep their defaults
				assert.Equal(t, DefaultOutputDir, cfg.Paths.OutputDir)
				assert.False(t, cfg.Export.Strict)
				assert.True(t, cfg.Export.Workbook)
				assert.True(t, cfg.Export.UseCRLF)
				assert.Equal(t, DefaultWorkers, cfg.Export.Workers)
			},
		},
		{
			name: "config file with environment override",
			file: `
logging:
  level: error
paths:
  output_dir: from-file
`,
			env: map[string]string{
				"DASHCSV_LOGGING_LEVEL":    "warn",
				"DASHCSV_PATHS_OUTPUT_DIR": "from-env",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "from-env", cfg.Paths.OutputDir)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"DASHCSV_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "zero workers",
			env:     map[string]string{"DASHCSV_EXPORT_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "too many workers",
			env:     map[string]string{"DASHCSV_EXPORT_WORKERS": "65"},
			wantErr: true,
		},
		{
			name:    "non numeric workers",
			env:     map[string]string{"DASHCSV_EXPORT_WORKERS": "many"},
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"DASHCSV_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "logging: [level",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configFile := ""
			if tt.file != "" {
				configFile = writeConfigFile(t, tt.file)
			} else {
				// keep the file search away from any dashcsv.yaml in the package dir
				t.Chdir(t.TempDir())
			}

			cfg, err := Load(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_SearchesConfigLocations(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "dashcsv.yaml"), []byte("export:\n  workers: 2\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Export.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})

	t.Run("file output requires a file path", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Output = "file"
		cfg.Logging.FilePath = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file_path")
	})

	t.Run("empty output dir", func(t *testing.T) {
		cfg := Default()
		cfg.Paths.OutputDir = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output_dir")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("blank report id", func(t *testing.T) {
		cfg := Default()
		cfg.Export.Reports = []string{"publishers", ""}
		assert.Error(t, cfg.Validate())
	})
}
