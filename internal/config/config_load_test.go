package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	os.Unsetenv("MSDS_IN")
	os.Unsetenv("MSDS_OUT")
	os.Unsetenv("MSDS_TEMPLATES")
	os.Unsetenv("MSDS_MINROUTE")
	os.Unsetenv("MSDS_MINFUZZY")
	os.Unsetenv("MSDS_AUTOPROFILE")
	os.Unsetenv("MSDS_WORKERS")
	os.Unsetenv("MSDS_LOGLEVEL")
	os.Unsetenv("MSDS_MAXFILESIZE")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	setArgs([]string{"msds-extract", "--templates=" + filepath.Join(tempDir, "templates")})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Verify default values
	if cfg.MinRouteConfidence != DefaultMinRoute {
		t.Errorf("LoadFromFlags() MinRouteConfidence = %v, want %v", cfg.MinRouteConfidence, DefaultMinRoute)
	}
	if cfg.MinFuzzyScore != DefaultMinFuzzy {
		t.Errorf("LoadFromFlags() MinFuzzyScore = %v, want %v", cfg.MinFuzzyScore, DefaultMinFuzzy)
	}
	if !cfg.AutoProfile {
		t.Error("LoadFromFlags() AutoProfile should default to true")
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("LoadFromFlags() Workers = %v, want %v", cfg.Workers, DefaultWorkers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 100*1024*1024)
	}
	// InputDir should be current working directory
	if cfg.InputDir == "" {
		t.Error("LoadFromFlags() InputDir should not be empty")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name            string
		extraArgs       []string
		wantMinRoute    int
		wantMinFuzzy    int
		wantAutoProfile bool
		wantWorkers     int
		wantLogLevel    string
		wantMaxFileSize int64
	}{
		{
			name:            "defaults with custom directories",
			extraArgs:       nil,
			wantMinRoute:    DefaultMinRoute,
			wantMinFuzzy:    DefaultMinFuzzy,
			wantAutoProfile: true,
			wantWorkers:     DefaultWorkers,
			wantLogLevel:    "info",
			wantMaxFileSize: 100 * 1024 * 1024,
		},
		{
			name:            "custom thresholds",
			extraArgs:       []string{"--minroute=90", "--minfuzzy=75"},
			wantMinRoute:    90,
			wantMinFuzzy:    75,
			wantAutoProfile: true,
			wantWorkers:     DefaultWorkers,
			wantLogLevel:    "info",
			wantMaxFileSize: 100 * 1024 * 1024,
		},
		{
			name:            "auto profile disabled with more workers",
			extraArgs:       []string{"--autoprofile=false", "--workers=8"},
			wantMinRoute:    DefaultMinRoute,
			wantMinFuzzy:    DefaultMinFuzzy,
			wantAutoProfile: false,
			wantWorkers:     8,
			wantLogLevel:    "info",
			wantMaxFileSize: 100 * 1024 * 1024,
		},
		{
			name:            "debug logging",
			extraArgs:       []string{"--loglevel=debug"},
			wantMinRoute:    DefaultMinRoute,
			wantMinFuzzy:    DefaultMinFuzzy,
			wantAutoProfile: true,
			wantWorkers:     DefaultWorkers,
			wantLogLevel:    "debug",
			wantMaxFileSize: 100 * 1024 * 1024,
		},
		{
			name:            "custom max file size",
			extraArgs:       []string{"--maxfilesize=50000000"},
			wantMinRoute:    DefaultMinRoute,
			wantMinFuzzy:    DefaultMinFuzzy,
			wantAutoProfile: true,
			wantWorkers:     DefaultWorkers,
			wantLogLevel:    "info",
			wantMaxFileSize: 50000000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original args and environment
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			tempDir := t.TempDir()
			args := []string{
				"msds-extract",
				"--in=" + tempDir,
				"--out=" + filepath.Join(tempDir, "out"),
				"--templates=" + filepath.Join(tempDir, "templates"),
			}
			args = append(args, tt.extraArgs...)

			setArgs(args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.MinRouteConfidence != tt.wantMinRoute {
				t.Errorf("LoadFromFlags() MinRouteConfidence = %v, want %v", cfg.MinRouteConfidence, tt.wantMinRoute)
			}
			if cfg.MinFuzzyScore != tt.wantMinFuzzy {
				t.Errorf("LoadFromFlags() MinFuzzyScore = %v, want %v", cfg.MinFuzzyScore, tt.wantMinFuzzy)
			}
			if cfg.AutoProfile != tt.wantAutoProfile {
				t.Errorf("LoadFromFlags() AutoProfile = %v, want %v", cfg.AutoProfile, tt.wantAutoProfile)
			}
			if cfg.Workers != tt.wantWorkers {
				t.Errorf("LoadFromFlags() Workers = %v, want %v", cfg.Workers, tt.wantWorkers)
			}
			if cfg.LogLevel != tt.wantLogLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLogLevel)
			}
			if cfg.MaxFileSize != tt.wantMaxFileSize {
				t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, tt.wantMaxFileSize)
			}
			// InputDir should be expanded to absolute path
			if !filepath.IsAbs(cfg.InputDir) {
				t.Errorf("LoadFromFlags() InputDir should be absolute, got %s", cfg.InputDir)
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()

	// Set environment variables
	os.Setenv("MSDS_IN", tempDir)
	os.Setenv("MSDS_OUT", filepath.Join(tempDir, "out"))
	os.Setenv("MSDS_TEMPLATES", filepath.Join(tempDir, "templates"))
	os.Setenv("MSDS_WORKERS", "6")
	os.Setenv("MSDS_LOGLEVEL", "warn")
	os.Setenv("MSDS_MAXFILESIZE", "200000000")

	setArgs([]string{"msds-extract"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.InputDir != tempDir {
		t.Errorf("LoadFromFlags() InputDir = %v, want %v", cfg.InputDir, tempDir)
	}
	if cfg.Workers != 6 {
		t.Errorf("LoadFromFlags() Workers = %v, want %v", cfg.Workers, 6)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 200000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 200000000)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	// Save original args and environment
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()

	// Set environment variables
	os.Setenv("MSDS_WORKERS", "2")
	os.Setenv("MSDS_LOGLEVEL", "error")

	// Set args that should override environment
	setArgs([]string{
		"msds-extract",
		"--in=" + tempDir,
		"--templates=" + filepath.Join(tempDir, "templates"),
		"--workers=12",
		"--loglevel=debug",
	})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	// Flags should override environment variables
	if cfg.Workers != 12 {
		t.Errorf("LoadFromFlags() Workers = %v, want %v (should override env)", cfg.Workers, 12)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v (should override env)", cfg.LogLevel, "debug")
	}
}

func TestLoadFromFlags_InvalidWorkers(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	setArgs([]string{
		"msds-extract",
		"--in=" + tempDir,
		"--templates=" + filepath.Join(tempDir, "templates"),
		"--workers=0",
	})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for zero workers")
	}
	if err != nil && !containsString(err.Error(), "workers must be at least 1") {
		t.Errorf("LoadFromFlags() error = %v, want error about workers", err)
	}
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	tempDir := t.TempDir()
	setArgs([]string{
		"msds-extract",
		"--in=" + tempDir,
		"--templates=" + filepath.Join(tempDir, "templates"),
		"--loglevel=invalid",
	})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
	if err != nil && !containsString(err.Error(), "invalid log level") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid log level", err)
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"msds-extract", "--version"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected version error")
	}
	if err != nil && err.Error() != "version requested" {
		t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
	}
}

// Helper function to check if a string contains a substring
func containsString(s, substr string) bool {
	return len(s) >= len(substr) &&
		(s == substr ||
			(len(s) > len(substr) &&
				(s[:len(substr)] == substr ||
					s[len(s)-len(substr):] == substr ||
					findSubstring(s, substr))))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
