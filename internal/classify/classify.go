// Package classify assigns a product category to a free-text title using
// ordered keyword rules.
package classify

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category model.Category
	Keywords []string
}

// DefaultRules returns the built-in keyword groups in precedence order.
// A title matching several groups takes the first (Printer, then Toner, then Ink).
func DefaultRules() []Rule {
	return []Rule{
		{Category: model.CategoryPrinter, Keywords: []string{"printer", "laserjet", "inkjet", "multifunction", "all-in-one", "mfp"}},
		{Category: model.CategoryToner, Keywords: []string{"toner", "drum unit", "laser cartridge", "toner cartridge"}},
		{Category: model.CategoryInk, Keywords: []string{"ink", "ink bottle", "ink tank", "ink cartridge"}},
	}
}

// Classifier is a deterministic title classifier. It is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New builds a Classifier. Rules are evaluated in the order given; keywords
// are folded once up front. With no rules, DefaultRules is used.
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	folded := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = fold(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		folded = append(folded, Rule{Category: r.Category, Keywords: kws})
	}
	return &Classifier{rules: folded}
}

// Classify returns the category for title. Empty titles are Other.
func (c *Classifier) Classify(title string) model.Category {
	t := fold(strings.TrimSpace(title))
	if t == "" {
		return model.CategoryOther
	}
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(t, k) {
				return r.Category
			}
		}
	}
	return model.CategoryOther
}

// Rules returns a copy of the folded rules.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

var defaultClassifier = New()

// Classify classifies title with the default rules.
func Classify(title string) model.Category {
	return defaultClassifier.Classify(title)
}

// fold applies Unicode case folding. A Caser holds state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Contains reports whether needle occurs in haystack ignoring case.
func Contains(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}
