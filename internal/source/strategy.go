package source

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/urlnorm"
)

// SelectorChain is an ordered list of CSS selectors. The first selector that
// matches anything wins.
type SelectorChain struct {
	raw      []string
	compiled []cascadia.Selector
}

// CompileSelectorChain compiles each selector in order.
func CompileSelectorChain(selectors ...string) (SelectorChain, error) {
	c := SelectorChain{raw: selectors}
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			return SelectorChain{}, eris.Wrapf(err, "source: compile selector %q", s)
		}
		c.compiled = append(c.compiled, sel)
	}
	return c, nil
}

// MustSelectorChain is like CompileSelectorChain but panics on a bad selector.
func MustSelectorChain(selectors ...string) SelectorChain {
	c, err := CompileSelectorChain(selectors...)
	if err != nil {
		panic(err)
	}
	return c
}

// Selectors returns the raw selector strings.
func (c SelectorChain) Selectors() []string { return c.raw }

// First returns the matches of the first selector with at least one match.
func (c SelectorChain) First(doc *Document) *goquery.Selection {
	for i, sel := range c.compiled {
		if m := doc.FindMatcher(sel); m.Length() > 0 {
			return m
		}
		if i+1 < len(c.compiled) {
			zap.L().Debug("source: selector matched nothing, trying next",
				zap.String("selector", c.raw[i]),
				zap.String("url", doc.URL),
			)
		}
	}
	return doc.FindNodes()
}

// TitleStrategy extracts a candidate title from a page. An empty string
// passes to the next strategy.
type TitleStrategy struct {
	Name    string
	Extract func(doc *Document) string
}

// ImageStrategy extracts candidate image URLs from a page.
type ImageStrategy struct {
	Name    string
	Extract func(doc *Document) []string
}

// FirstTitle runs title strategies in order and returns the first non-empty result.
func FirstTitle(doc *Document, strategies []TitleStrategy) string {
	for _, s := range strategies {
		if t := cleanText(s.Extract(doc)); t != "" {
			return t
		}
	}
	return ""
}

// CollectImages runs every image strategy in order and pools their results,
// so later strategies supplement earlier ones. URLs are absolutized against
// the page; duplicates and overflow past the slot count are dropped.
func CollectImages(doc *Document, strategies []ImageStrategy) [model.ImageSlots]string {
	var urls []string
	for _, s := range strategies {
		for _, raw := range s.Extract(doc) {
			if abs := absolutize(raw, doc.URL); abs != "" {
				urls = append(urls, abs)
			}
		}
	}
	return model.PadImages(urls)
}

// MetaContent reads <meta property=name content=...>.
func MetaContent(doc *Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

// OGTitle reads og:title.
func OGTitle() TitleStrategy {
	return TitleStrategy{Name: "og:title", Extract: func(doc *Document) string {
		return MetaContent(doc, "og:title")
	}}
}

// DocumentTitle reads the <title> element.
func DocumentTitle() TitleStrategy {
	return TitleStrategy{Name: "title", Extract: func(doc *Document) string {
		return doc.Find("title").First().Text()
	}}
}

// SelectorText tries each selector and returns the text of the first match
// whose text is non-empty.
func SelectorText(selectors ...string) TitleStrategy {
	chain := MustSelectorChain(selectors...)
	return TitleStrategy{Name: strings.Join(selectors, " | "), Extract: func(doc *Document) string {
		for _, sel := range chain.compiled {
			if t := cleanText(doc.FindMatcher(sel).First().Text()); t != "" {
				return t
			}
		}
		return ""
	}}
}

// OGImage reads og:image.
func OGImage() ImageStrategy {
	return ImageStrategy{Name: "og:image", Extract: func(doc *Document) []string {
		if v := MetaContent(doc, "og:image"); v != "" {
			return []string{v}
		}
		return nil
	}}
}

// ElementAttr returns attr of the first element matching selector.
func ElementAttr(selector, attr string) ImageStrategy {
	sel := cascadia.MustCompile(selector)
	return ImageStrategy{Name: selector + "@" + attr, Extract: func(doc *Document) []string {
		if v, ok := doc.FindMatcher(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return []string{strings.TrimSpace(v)}
		}
		return nil
	}}
}

// ImageManifest reads a JSON object attribute whose keys are image URLs, in
// the order they appear in the markup.
func ImageManifest(selector, attr string) ImageStrategy {
	sel := cascadia.MustCompile(selector)
	return ImageStrategy{Name: selector + "@" + attr + "{}", Extract: func(doc *Document) []string {
		v, ok := doc.FindMatcher(sel).First().Attr(attr)
		if !ok {
			return nil
		}
		return OrderedKeys(v)
	}}
}

// ImagesWhere returns the src of every <img> accepted by keep, in document order.
func ImagesWhere(keep func(src string) bool) ImageStrategy {
	return ImageStrategy{Name: "img[src]", Extract: func(doc *Document) []string {
		var out []string
		doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
			src := strings.TrimSpace(s.AttrOr("src", ""))
			if src != "" && keep(src) {
				out = append(out, src)
			}
		})
		return out
	}}
}

// OrderedKeys returns the top-level keys of a JSON object in source order.
// Malformed input yields whatever keys were read before the error.
func OrderedKeys(raw string) []string {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		keys = append(keys, key)
	}
	return keys
}

func absolutize(raw, pageURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return urlnorm.Resolve(raw, pageURL)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
