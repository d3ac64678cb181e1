package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel     = "info"
	DefaultWorkers      = 4
	DefaultMinRoute     = 80
	DefaultMinFuzzy     = 82
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultTemplatesDir = "templates"
	DefaultOutputDir    = "out"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the extraction tool
type Config struct {
	// Input/output configuration
	InputDir     string
	OutputDir    string
	TemplatesDir string

	// Extraction configuration
	MinRouteConfidence int  // minimum layout match score before generic fallback
	MinFuzzyScore      int  // minimum fuzzy score for regulatory label mapping
	AutoProfile        bool // synthesize layout profiles for unmatched documents
	Workers            int  // concurrent document workers

	// Application configuration
	Version     string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		InputDir:           currentDir,
		OutputDir:          DefaultOutputDir,
		TemplatesDir:       DefaultTemplatesDir,
		MinRouteConfidence: DefaultMinRoute,
		MinFuzzyScore:      DefaultMinFuzzy,
		AutoProfile:        true,
		Workers:            DefaultWorkers,
		Version:            "1.0.0",
		LogLevel:           DefaultLogLevel,
		MaxFileSize:        DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.InputDir, &cfg.OutputDir, &cfg.TemplatesDir} {
		if *p == "" {
			continue
		}
		if expandedPath, err := filepath.Abs(*p); err == nil {
			*p = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("MSDS")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("in", cfg.InputDir)
	viper.SetDefault("out", cfg.OutputDir)
	viper.SetDefault("templates", cfg.TemplatesDir)
	viper.SetDefault("minroute", cfg.MinRouteConfidence)
	viper.SetDefault("minfuzzy", cfg.MinFuzzyScore)
	viper.SetDefault("autoprofile", cfg.AutoProfile)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("in", cfg.InputDir, "Directory containing PDF files to extract")
	pflag.String("out", cfg.OutputDir, "Directory for JSON and CSV output")
	pflag.String("templates", cfg.TemplatesDir, "Directory holding layout profile YAML files")
	pflag.Int("minroute", cfg.MinRouteConfidence, "Minimum layout match score (0-100) before falling back to the generic profile")
	pflag.Int("minfuzzy", cfg.MinFuzzyScore, "Minimum fuzzy score (0-100) for regulatory label mapping")
	pflag.Bool("autoprofile", cfg.AutoProfile, "Synthesize a layout profile when no existing profile matches")
	pflag.Int("workers", cfg.Workers, "Number of documents processed concurrently")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("in", pflag.Lookup("in"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("templates", pflag.Lookup("templates"))
	_ = viper.BindPFlag("minroute", pflag.Lookup("minroute"))
	_ = viper.BindPFlag("minfuzzy", pflag.Lookup("minfuzzy"))
	_ = viper.BindPFlag("autoprofile", pflag.Lookup("autoprofile"))
	_ = viper.BindPFlag("workers", pflag.Lookup("workers"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nmsds-extract - Batch field extraction for safety data sheet PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --in=/path/to/pdfs --out=./out          # extract a directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=./sheets --workers=8               # more parallelism\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --in=./sheets --autoprofile=false       # never synthesize profiles\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MSDS_IN           Input PDF directory\n")
		fmt.Fprintf(os.Stderr, "  MSDS_OUT          Output directory\n")
		fmt.Fprintf(os.Stderr, "  MSDS_TEMPLATES    Layout profile directory\n")
		fmt.Fprintf(os.Stderr, "  MSDS_MINROUTE     Minimum layout match score\n")
		fmt.Fprintf(os.Stderr, "  MSDS_MINFUZZY     Minimum fuzzy label score\n")
		fmt.Fprintf(os.Stderr, "  MSDS_AUTOPROFILE  Synthesize profiles for unmatched documents\n")
		fmt.Fprintf(os.Stderr, "  MSDS_WORKERS      Concurrent document workers\n")
		fmt.Fprintf(os.Stderr, "  MSDS_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  MSDS_MAXFILESIZE  Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.InputDir = viper.GetString("in")
	cfg.OutputDir = viper.GetString("out")
	cfg.TemplatesDir = viper.GetString("templates")
	cfg.MinRouteConfidence = viper.GetInt("minroute")
	cfg.MinFuzzyScore = viper.GetInt("minfuzzy")
	cfg.AutoProfile = viper.GetBool("autoprofile")
	cfg.Workers = viper.GetInt("workers")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory cannot be empty")
	}
	if info, err := os.Stat(c.InputDir); err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.InputDir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory", c.InputDir)
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	// Create the profile directory if it doesn't exist
	if c.TemplatesDir == "" {
		return errors.New("templates directory cannot be empty")
	}
	if _, err := os.Stat(c.TemplatesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.TemplatesDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create templates directory %s: %w", c.TemplatesDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access templates directory %s: %w", c.TemplatesDir, err)
	}

	if c.MinRouteConfidence < 0 || c.MinRouteConfidence > 100 {
		return errors.New("minimum route confidence must be between 0 and 100")
	}
	if c.MinFuzzyScore < 0 || c.MinFuzzyScore > 100 {
		return errors.New("minimum fuzzy score must be between 0 and 100")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{InputDir: %s, OutputDir: %s, TemplatesDir: %s, Workers: %d, AutoProfile: %t, LogLevel: %s}",
		c.InputDir, c.OutputDir, c.TemplatesDir, c.Workers, c.AutoProfile, c.LogLevel)
}
