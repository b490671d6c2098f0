package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcncl/sidmtools/internal/fileset"
	"github.com/mcncl/sidmtools/internal/plot"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for sidmtools
type Config struct {
	Plot    PlotConfig    `yaml:"plot"`
	Fileset FilesetConfig `yaml:"fileset"`
	Dev     DevConfig     `yaml:"dev"`
}

// PlotConfig controls plotting style
type PlotConfig struct {
	Style string `yaml:"style"`
	DPI   int    `yaml:"dpi"`
	Color bool   `yaml:"color"`
	Width int    `yaml:"width"`
}

// FilesetConfig controls where ntuple locations are read from
type FilesetConfig struct {
	LocationConfig string   `yaml:"location_config"`
	Version        string   `yaml:"version"`
	Samples        []string `yaml:"samples"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Plot: PlotConfig{
			Style: "cms",
			DPI:   plot.DefaultDPI,
			Color: true,
			Width: 40,
		},
		Fileset: FilesetConfig{
			LocationConfig: fileset.DefaultLocationConfig,
			Samples:        []string{},
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults. The location config default is held back so a
	// value set by the file can be told apart from it.
	cfg := NewConfig()
	cfg.Fileset.LocationConfig = ""

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	// A location config set in the file is relative to the file. The default
	// stays relative to the working directory.
	switch loc := cfg.Fileset.LocationConfig; {
	case loc == "":
		cfg.Fileset.LocationConfig = fileset.DefaultLocationConfig
	case !filepath.IsAbs(loc):
		cfg.Fileset.LocationConfig = filepath.Join(filepath.Dir(path), loc)
	}

	return cfg, nil
}

// Validate checks that the plot style is supported and numeric options are sane
func (c *Config) Validate() error {
	if _, err := plot.SetPlotStyle(c.Plot.Style, c.Plot.DPI); err != nil {
		return err
	}
	if c.Plot.DPI < 0 {
		return fmt.Errorf("plot.dpi must not be negative, got %d", c.Plot.DPI)
	}
	if c.Plot.Width < 0 {
		return fmt.Errorf("plot.width must not be negative, got %d", c.Plot.Width)
	}
	return nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".sidmtools.yml", ".sidmtools.yaml", "sidmtools.yml", "sidmtools.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides holds command-line values; zero values leave the config alone
type Overrides struct {
	Style          string
	DPI            int
	LocationConfig string
	Version        string
	Debug          bool
	NoColor        bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.Style != "" {
		cfg.Plot.Style = o.Style
	}
	if o.DPI > 0 {
		cfg.Plot.DPI = o.DPI
	}
	if o.LocationConfig != "" {
		cfg.Fileset.LocationConfig = o.LocationConfig
	}
	if o.Version != "" {
		cfg.Fileset.Version = o.Version
	}
	// Flags can only switch these on
	if o.Debug {
		cfg.Dev.Debug = true
	}
	if o.NoColor {
		cfg.Plot.Color = false
	}

	return cfg, nil
}
