package source

import (
	"net/url"
	"path"
	"strings"
)

// PathFilter drops listing URLs whose path matches a glob pattern such as
// "/sspa/*" or "/gp/*". A nil or empty filter excludes nothing.
type PathFilter struct {
	patterns []string
}

// NewPathFilter lower-cases and keeps the non-empty patterns.
func NewPathFilter(patterns []string) *PathFilter {
	f := &PathFilter{}
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			f.patterns = append(f.patterns, p)
		}
	}
	return f
}

// Patterns returns the configured patterns.
func (f *PathFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return f.patterns
}

// IsExcluded reports whether rawURL's path matches any pattern. Unparseable
// URLs are excluded only when patterns exist.
func (f *PathFilter) IsExcluded(rawURL string) bool {
	if f == nil || len(f.patterns) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range f.patterns {
		if matchSegmented(pattern, p) {
			return true
		}
	}
	return false
}

// matchSegmented is path.Match, except that "/dir/*" also matches any depth
// below /dir.
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/")
	}
	return false
}
