package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Map     MapConfig     `yaml:"map"`
	Scorer  ScorerConfig  `yaml:"scorer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Trace    bool        `yaml:"trace"` // per-frame LOD selection detail at DEBUG
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address    string   `yaml:"address"`
	SessionTTL Duration `yaml:"session_ttl"` // idle map sessions are closed after this
}

// CatalogConfig points at the point catalog and its side tables.
type CatalogConfig struct {
	Path           string `yaml:"path"`            // .yaml, .json, .geojson or .shp
	LinksPath      string `yaml:"links_path"`      // optional name -> URL table
	ImportancePath string `yaml:"importance_path"` // optional name -> score overrides
}

// ScorerConfig holds settings for the importance scorer.
type ScorerConfig struct {
	RulesPath string `yaml:"rules_path"` // optional; compiled-in rules when empty
}

// ZoomStep maps every zoom level up to and including MaxZoom to Value.
type ZoomStep struct {
	MaxZoom int     `yaml:"max_zoom"`
	Value   float64 `yaml:"value"`
}

// MapConfig holds the level-of-detail settings.
type MapConfig struct {
	MinZoom         int        `yaml:"min_zoom"`
	MaxZoom         int        `yaml:"max_zoom"`
	FullDetailZoom  int        `yaml:"full_detail_zoom"` // all points eligible, no binning
	PaddingPx       float64    `yaml:"padding_px"`
	TopMarkers      int        `yaml:"top_markers"`      // markers in the top-N + dots regime
	FeaturedMarkers int        `yaml:"featured_markers"` // always-on markers in the score+bin regime
	MarkerClickZoom int        `yaml:"marker_click_zoom"`
	DotClickZoom    int        `yaml:"dot_click_zoom"`
	FlyDuration     Duration   `yaml:"fly_duration"`
	Thresholds      []ZoomStep `yaml:"thresholds"`
	BinSizes        []ZoomStep `yaml:"bin_sizes"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/poimap.db",
		},
		Server: ServerConfig{
			Address:    "localhost:1921",
			SessionTTL: Duration(30 * time.Minute),
		},
		Catalog: CatalogConfig{
			Path:           "./data/catalog.yaml",
			LinksPath:      "",
			ImportancePath: "",
		},
		Map: MapConfig{
			MinZoom:         2,
			MaxZoom:         19,
			FullDetailZoom:  10,
			PaddingPx:       80,
			TopMarkers:      3,
			FeaturedMarkers: 10,
			MarkerClickZoom: 12,
			DotClickZoom:    10,
			FlyDuration:     Duration(500 * time.Millisecond),
			Thresholds: []ZoomStep{
				{MaxZoom: 3, Value: 88},
				{MaxZoom: 4, Value: 82},
				{MaxZoom: 5, Value: 76},
				{MaxZoom: 6, Value: 70},
				{MaxZoom: 7, Value: 64},
				{MaxZoom: 8, Value: 58},
				{MaxZoom: 9, Value: 50},
			},
			BinSizes: []ZoomStep{
				{MaxZoom: 3, Value: 256},
				{MaxZoom: 5, Value: 192},
				{MaxZoom: 7, Value: 128},
				{MaxZoom: 9, Value: 96},
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Map.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	cfg.Map.sortSteps()

	return cfg, nil
}

// applyEnv lets the environment (or a .env file loaded by the caller) override deployment paths.
func applyEnv(cfg *Config) {
	if v := os.Getenv("POIMAP_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	if v := os.Getenv("POIMAP_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("POIMAP_CATALOG"); v != "" {
		cfg.Catalog.Path = v
	}
}

// Validate checks the zoom settings for consistency.
func (m *MapConfig) Validate() error {
	if m.MinZoom < 0 {
		return fmt.Errorf("min_zoom must be >= 0, got %d", m.MinZoom)
	}
	if m.MaxZoom < m.MinZoom {
		return fmt.Errorf("max_zoom (%d) must be >= min_zoom (%d)", m.MaxZoom, m.MinZoom)
	}
	if m.PaddingPx < 0 {
		return fmt.Errorf("padding_px must be >= 0, got %.0f", m.PaddingPx)
	}
	for _, s := range m.BinSizes {
		if s.Value <= 0 {
			return fmt.Errorf("bin size for zoom <= %d must be positive", s.MaxZoom)
		}
	}
	return nil
}

func (m *MapConfig) sortSteps() {
	sort.SliceStable(m.Thresholds, func(i, j int) bool { return m.Thresholds[i].MaxZoom < m.Thresholds[j].MaxZoom })
	sort.SliceStable(m.BinSizes, func(i, j int) bool { return m.BinSizes[i].MaxZoom < m.BinSizes[j].MaxZoom })
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# poimap Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	reThresholds := regexp.MustCompile(`(?m)^(\s+)thresholds:`)
	data = reThresholds.ReplaceAll(data, []byte("${1}# Minimum importance for a marker, per zoom step (0 from full_detail_zoom on)\n${1}thresholds:"))

	reBins := regexp.MustCompile(`(?m)^(\s+)bin_sizes:`)
	data = reBins.ReplaceAll(data, []byte("${1}# Grid cell size in pixels used to thin out overlapping markers\n${1}bin_sizes:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
