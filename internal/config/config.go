package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Search   SearchConfig   `yaml:"search"`
	Browser  BrowserConfig  `yaml:"browser"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Classify ClassifyConfig `yaml:"classify"`
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
}

// SearchConfig holds the parameters of a discovery run
type SearchConfig struct {
	Query         string   `yaml:"query"`
	Location      string   `yaml:"location"`
	MaxResults    int      `yaml:"max_results"`
	Sources       []string `yaml:"sources"`
	ExtractEmails bool     `yaml:"extract_emails"`
	OutputFile    string   `yaml:"output_file"`
}

// BrowserConfig holds the browser session configuration
type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	UserAgent     string        `yaml:"user_agent"`
	NavTimeout    time.Duration `yaml:"nav_timeout"`
	WaitTimeout   time.Duration `yaml:"wait_timeout"`
	ViewportW     int           `yaml:"viewport_width"`
	ViewportH     int           `yaml:"viewport_height"`
	ScreenshotDir string        `yaml:"screenshot_dir"`
}

// EnrichConfig holds the detail/email enrichment configuration
type EnrichConfig struct {
	DetailWorkers int           `yaml:"detail_workers"`
	EmailWorkers  int           `yaml:"email_workers"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryDelayMin time.Duration `yaml:"retry_delay_min"`
	RetryDelayMax time.Duration `yaml:"retry_delay_max"`
	EmailDelayMin time.Duration `yaml:"email_delay_min"`
	EmailDelayMax time.Duration `yaml:"email_delay_max"`
}

// ClassifyConfig holds the text-classification service configuration.
// The API key is only ever read from the environment.
type ClassifyConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"-"`
	Timeout  time.Duration `yaml:"timeout"`
	DelayMin time.Duration `yaml:"delay_min"`
	DelayMax time.Duration `yaml:"delay_max"`
}

// StoreConfig holds the document-store configuration. An empty URI means
// the run persists to the spreadsheet only.
type StoreConfig struct {
	MongoURI   string `yaml:"-"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load loads the configuration from a YAML file and overlays environment
// credentials.
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := CreateDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	config.applyEnv()

	return config, nil
}

// CreateDefault creates a default configuration
func CreateDefault() *AppConfig {
	cfg := &AppConfig{
		Search: SearchConfig{
			MaxResults: 50,
			Sources:    []string{"google_maps"},
			OutputFile: "leads.xlsx",
		},
		Browser: BrowserConfig{
			Headless:      true,
			UserAgent:     DefaultUserAgents[0],
			NavTimeout:    45 * time.Second,
			WaitTimeout:   15 * time.Second,
			ViewportW:     1366,
			ViewportH:     768,
			ScreenshotDir: "screenshots",
		},
		Enrich: EnrichConfig{
			DetailWorkers: 2,
			EmailWorkers:  3,
			MaxRetries:    2,
			RetryDelayMin: 2 * time.Second,
			RetryDelayMax: 4 * time.Second,
			EmailDelayMin: 1 * time.Second,
			EmailDelayMax: 3 * time.Second,
		},
		Classify: ClassifyConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
			DelayMin: 500 * time.Millisecond,
			DelayMax: 1500 * time.Millisecond,
		},
		Store: StoreConfig{
			Database:   "leads",
			Collection: "businesses",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	cfg.applyEnv()
	return cfg
}

// applyEnv reads credentials once from the environment. Absence of the
// classification key degrades classification to always-default rather than
// failing the run; absence of the store URI selects a file-only run.
func (c *AppConfig) applyEnv() {
	if v := os.Getenv("CLASSIFIER_API_KEY"); v != "" {
		c.Classify.APIKey = v
	}
	if v := os.Getenv("CLASSIFIER_ENDPOINT"); v != "" {
		c.Classify.Endpoint = v
	}
	if v := os.Getenv("CLASSIFIER_MODEL"); v != "" {
		c.Classify.Model = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Store.MongoURI = v
	}
}
