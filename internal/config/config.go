package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Harvest    HarvestConfig    `yaml:"harvest" mapstructure:"harvest"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Navigate   NavigateConfig   `yaml:"navigate" mapstructure:"navigate"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// HarvestConfig is the search plan and its outputs.
type HarvestConfig struct {
	Brands        []string            `yaml:"brands" mapstructure:"brands"`
	Variants      map[string][]string `yaml:"variants" mapstructure:"variants"`
	Targets       map[string]int      `yaml:"targets" mapstructure:"targets"`
	PerTaskCap    int                 `yaml:"per_task_cap" mapstructure:"per_task_cap"`
	Sources       []string            `yaml:"sources" mapstructure:"sources"`
	PauseMs       int                 `yaml:"pause_ms" mapstructure:"pause_ms"`
	URLOutput     string              `yaml:"url_output" mapstructure:"url_output"`
	ProductOutput string              `yaml:"product_output" mapstructure:"product_output"`
	// ExcludePaths maps a source id to glob path patterns dropped from its search results.
	ExcludePaths map[string][]string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// BrowserConfig selects and tunes the navigation gateway.
type BrowserConfig struct {
	Engine            string `yaml:"engine" mapstructure:"engine"`
	Headless          bool   `yaml:"headless" mapstructure:"headless"`
	NoSandbox         bool   `yaml:"no_sandbox" mapstructure:"no_sandbox"`
	Bin               string `yaml:"bin" mapstructure:"bin"`
	Proxy             string `yaml:"proxy" mapstructure:"proxy"`
	Stealth           bool   `yaml:"stealth" mapstructure:"stealth"`
	SessionsPerSource int    `yaml:"sessions_per_source" mapstructure:"sessions_per_source"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// NavigateConfig bounds every page load.
type NavigateConfig struct {
	SearchTimeoutSecs int     `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	DetailTimeoutSecs int     `yaml:"detail_timeout_secs" mapstructure:"detail_timeout_secs"`
	IdleTimeoutSecs   int     `yaml:"idle_timeout_secs" mapstructure:"idle_timeout_secs"`
	SourceRPS         float64 `yaml:"source_rps" mapstructure:"source_rps"`
}

// ResilienceConfig configures retries and per-source circuit breakers.
type ResilienceConfig struct {
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// RetryConfig configures page-load retries.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the per-source breaker.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ClassifyConfig optionally replaces the built-in keyword lists.
type ClassifyConfig struct {
	Rules map[string][]string `yaml:"rules" mapstructure:"rules"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path looks
// for an optional config.yaml in the working directory; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, eris.Wrap(err, "config: read file")
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("harvest.brands", []string{"Brother", "Canon", "Epson", "HP", "Ricoh", "Samsung", "Xerox"})
	v.SetDefault("harvest.variants.printer", []string{"printer", "laser printer", "inkjet printer", "all in one printer", "wireless printer"})
	v.SetDefault("harvest.variants.toner", []string{"toner", "toner cartridge", "laser toner", "drum unit"})
	v.SetDefault("harvest.variants.ink", []string{"ink", "ink cartridge", "ink bottle", "ink tank", "photo printer ink"})
	v.SetDefault("harvest.targets.printer", 0)
	v.SetDefault("harvest.targets.toner", 0)
	v.SetDefault("harvest.targets.ink", 0)
	v.SetDefault("harvest.per_task_cap", 50)
	v.SetDefault("harvest.sources", []string{"amazon", "ebay", "aliexpress", "harvey_norman", "challenger"})
	v.SetDefault("harvest.pause_ms", 700)
	v.SetDefault("harvest.url_output", "all_product_urls.csv")
	v.SetDefault("harvest.product_output", "products_other_visual_dataset.csv")
	v.SetDefault("browser.engine", "rod")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.sessions_per_source", 1)
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("navigate.search_timeout_secs", 20)
	v.SetDefault("navigate.detail_timeout_secs", 30)
	v.SetDefault("navigate.idle_timeout_secs", 5)
	v.SetDefault("navigate.source_rps", 1.0)
	v.SetDefault("resilience.retry.max_attempts", 2)
	v.SetDefault("resilience.retry.initial_backoff_ms", 500)
	v.SetDefault("resilience.retry.max_backoff_ms", 5000)
	v.SetDefault("resilience.circuit.failure_threshold", 5)
	v.SetDefault("resilience.circuit.reset_timeout_secs", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate reports every problem that would make a run meaningless.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	h := c.Harvest
	if len(h.BrandList()) == 0 {
		add("harvest.brands must not be empty")
	}
	if len(h.Variants) == 0 {
		add("harvest.variants must name at least one category")
	}
	for _, key := range sortedKeys(h.Variants) {
		if !harvestableKey(key) {
			add("harvest.variants: unknown category %q", key)
			continue
		}
		if len(nonEmpty(h.Variants[key])) == 0 {
			add("harvest.variants.%s must not be empty", key)
		}
	}
	for _, key := range sortedKeys(h.Targets) {
		n := h.Targets[key]
		if n < 0 {
			add("harvest.targets.%s must be >= 0", key)
		}
		if _, ok := h.Variants[key]; !ok && n > 0 {
			add("harvest.targets.%s set for a category without variants", key)
		}
	}
	if h.PerTaskCap <= 0 {
		add("harvest.per_task_cap must be > 0")
	}
	if h.PauseMs < 0 {
		add("harvest.pause_ms must be >= 0")
	}
	if len(h.Sources) == 0 {
		add("harvest.sources must not be empty")
	}
	for _, s := range h.Sources {
		if !model.SourceID(s).IsSearchable() {
			add("harvest.sources: unknown source %q", s)
		}
	}
	for _, key := range sortedKeys(h.ExcludePaths) {
		if !model.SourceID(key).IsSearchable() {
			add("harvest.exclude_paths: unknown source %q", key)
		}
	}

	switch c.Browser.Engine {
	case "rod", "static":
	default:
		add("browser.engine must be rod or static, got %q", c.Browser.Engine)
	}
	if c.Browser.SessionsPerSource <= 0 {
		add("browser.sessions_per_source must be > 0")
	}

	n := c.Navigate
	if n.SearchTimeoutSecs <= 0 || n.DetailTimeoutSecs <= 0 || n.IdleTimeoutSecs <= 0 {
		add("navigate timeouts must be > 0")
	}
	if n.SourceRPS <= 0 {
		add("navigate.source_rps must be > 0")
	}

	if c.Resilience.Retry.MaxAttempts <= 0 {
		add("resilience.retry.max_attempts must be > 0")
	}

	for _, key := range sortedKeys(c.Classify.Rules) {
		if !harvestableKey(key) {
			add("classify.rules: unknown category %q", key)
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CategoryVariants returns the variant lists keyed by category, in the
// canonical category order.
func (h HarvestConfig) CategoryVariants() (map[model.Category][]string, []model.Category) {
	out := make(map[model.Category][]string, len(h.Variants))
	var order []model.Category
	for _, cat := range model.HarvestCategories() {
		vs := nonEmpty(h.Variants[cat.QueryType()])
		if len(vs) == 0 {
			continue
		}
		out[cat] = vs
		order = append(order, cat)
	}
	return out, order
}

// CategoryTargets returns the per-category targets.
func (h HarvestConfig) CategoryTargets() map[model.Category]int {
	out := make(map[model.Category]int, len(h.Targets))
	for key, n := range h.Targets {
		if cat, err := model.ParseCategory(key); err == nil && cat.Harvestable() {
			out[cat] = n
		}
	}
	return out
}

// SourceIDs returns the enabled sources in configured order.
func (h HarvestConfig) SourceIDs() []model.SourceID {
	out := make([]model.SourceID, 0, len(h.Sources))
	for _, s := range h.Sources {
		out = append(out, model.SourceID(s))
	}
	return out
}

// Exclusions returns the exclusion patterns keyed by source.
func (h HarvestConfig) Exclusions() map[model.SourceID][]string {
	out := make(map[model.SourceID][]string, len(h.ExcludePaths))
	for k, v := range h.ExcludePaths {
		out[model.SourceID(k)] = v
	}
	return out
}

// BrandList returns the configured brands trimmed, with blanks dropped.
func (h HarvestConfig) BrandList() []string {
	return nonEmpty(h.Brands)
}

// Pause is the delay between keyword variants.
func (h HarvestConfig) Pause() time.Duration {
	return time.Duration(h.PauseMs) * time.Millisecond
}

// SearchTimeout bounds a results-page load.
func (n NavigateConfig) SearchTimeout() time.Duration {
	return time.Duration(n.SearchTimeoutSecs) * time.Second
}

// DetailTimeout bounds a listing-page load.
func (n NavigateConfig) DetailTimeout() time.Duration {
	return time.Duration(n.DetailTimeoutSecs) * time.Second
}

// IdleTimeout bounds the wait for network idle.
func (n NavigateConfig) IdleTimeout() time.Duration {
	return time.Duration(n.IdleTimeoutSecs) * time.Second
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func harvestableKey(key string) bool {
	cat, err := model.ParseCategory(key)
	return err == nil && cat.Harvestable()
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
