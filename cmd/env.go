package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/classify"
	"github.com/sells-group/printer-harvest/internal/config"
	"github.com/sells-group/printer-harvest/internal/harvest"
	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/navigate"
	"github.com/sells-group/printer-harvest/internal/plan"
	"github.com/sells-group/printer-harvest/internal/resilience"
	"github.com/sells-group/printer-harvest/internal/source"
)

// harvestEnv holds everything a harvest command needs.
type harvestEnv struct {
	Browser   navigate.Browser
	Registry  *source.Registry
	Harvester *harvest.Harvester
}

// Close releases pages and then the browser.
func (e *harvestEnv) Close() {
	if e.Harvester != nil {
		if err := e.Harvester.Close(); err != nil {
			zap.L().Warn("close harvester", zap.Error(err))
		}
	}
	if e.Browser != nil {
		if err := e.Browser.Close(); err != nil {
			zap.L().Warn("close browser", zap.Error(err))
		}
	}
}

// initHarvest validates cfg, launches the browser and builds the Harvester.
// Callers should defer env.Close().
func initHarvest(c *config.Config) (*harvestEnv, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	reg := source.DefaultRegistry(sourceOptions(c))
	adapters, err := reg.Select(c.Harvest.SourceIDs())
	if err != nil {
		return nil, err
	}

	browser, err := newBrowser(c.Browser)
	if err != nil {
		return nil, err
	}

	guard := resilience.NewGuard(
		resilience.NewPolicy(c.Resilience.Retry.MaxAttempts, c.Resilience.Retry.InitialBackoffMs, c.Resilience.Retry.MaxBackoffMs),
		resilience.NewSourceBreakers(resilience.NewBreakerConfig(c.Resilience.Circuit.FailureThreshold, c.Resilience.Circuit.ResetTimeoutSecs)),
	)

	h := harvest.New(browser, reg, adapters, guard, newClassifier(c.Classify), harvest.Options{
		PerTaskCap:        c.Harvest.PerTaskCap,
		Pause:             c.Harvest.Pause(),
		SourceRPS:         c.Navigate.SourceRPS,
		SessionsPerSource: c.Browser.SessionsPerSource,
		Targets:           c.Harvest.CategoryTargets(),
	})

	zap.L().Info("harvest environment ready",
		zap.String("run_id", h.Summary().RunID),
		zap.String("engine", c.Browser.Engine),
		zap.Strings("sources", c.Harvest.Sources),
	)
	return &harvestEnv{Browser: browser, Registry: reg, Harvester: h}, nil
}

func newBrowser(c config.BrowserConfig) (navigate.Browser, error) {
	switch c.Engine {
	case "static":
		return navigate.NewStaticBrowser(navigate.StaticOptions{UserAgent: c.UserAgent}), nil
	case "rod", "":
		b, err := navigate.NewRodBrowser(navigate.RodOptions{
			Headless:  c.Headless,
			NoSandbox: c.NoSandbox,
			Bin:       c.Bin,
			Proxy:     c.Proxy,
			Stealth:   c.Stealth,
			UserAgent: c.UserAgent,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init browser")
		}
		return b, nil
	default:
		return nil, eris.Errorf("init browser: unknown engine %q", c.Engine)
	}
}

func sourceOptions(c *config.Config) source.Options {
	opts := source.DefaultOptions()
	opts.SearchTimeout = c.Navigate.SearchTimeout()
	opts.DetailTimeout = c.Navigate.DetailTimeout()
	opts.IdleTimeout = c.Navigate.IdleTimeout()
	opts.Exclude = c.Harvest.Exclusions()
	return opts
}

// newClassifier applies keyword overrides over the default rule order.
func newClassifier(c config.ClassifyConfig) *classify.Classifier {
	if len(c.Rules) == 0 {
		return classify.New()
	}
	rules := classify.DefaultRules()
	for i, r := range rules {
		if kws := c.Rules[r.Category.QueryType()]; len(kws) > 0 {
			rules[i].Keywords = kws
		}
	}
	return classify.New(rules...)
}

func planTasks(c *config.Config) []model.SearchTask {
	variants, order := c.Harvest.CategoryVariants()
	return plan.Plan(c.Harvest.BrandList(), variants, order)
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// restrictCategories keeps only the named categories' variants.
func restrictCategories(c *config.Config, names []string) error {
	keep := make(map[string][]string, len(names))
	for _, n := range names {
		cat, err := model.ParseCategory(n)
		if err != nil {
			return err
		}
		if !cat.Harvestable() {
			return eris.Errorf("category %q cannot be harvested", n)
		}
		key := cat.QueryType()
		if vs, ok := c.Harvest.Variants[key]; ok {
			keep[key] = vs
		}
	}
	c.Harvest.Variants = keep
	for key := range c.Harvest.Targets {
		if _, ok := keep[key]; !ok {
			delete(c.Harvest.Targets, key)
		}
	}
	return nil
}
