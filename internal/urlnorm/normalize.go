// Package urlnorm canonicalizes discovered hrefs and tracks run-scoped uniqueness.
package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize returns the canonical form of rawHref found on a page of baseURL.
// Protocol-relative hrefs take the base scheme (https when unknown),
// root-relative hrefs are joined to the base origin, and everything from the
// first '?' or '#' is dropped. Normalize is idempotent.
func Normalize(rawHref, baseURL string) string {
	href := strings.TrimSpace(rawHref)
	if href == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(href, "//"):
		href = scheme(baseURL) + ":" + href
	case strings.HasPrefix(href, "/"):
		href = Origin(baseURL) + href
	case !hasScheme(href):
		if base, err := url.Parse(baseURL); err == nil && base.Scheme != "" && base.Host != "" {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}
	}

	return stripQuery(href)
}

// Resolve absolutizes rawRef against baseURL and keeps its query string.
// Image URLs need this since CDNs encode sizing in the query.
func Resolve(rawRef, baseURL string) string {
	ref := strings.TrimSpace(rawRef)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return scheme(baseURL) + ":" + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.Scheme != "" {
		return ref
	}
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return ""
	}
	return base.ResolveReference(r).String()
}

// Origin returns scheme://host for rawURL, or "" when rawURL is not absolute.
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Host returns the lower-cased host of rawURL.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func stripQuery(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return href
}

func scheme(baseURL string) string {
	if u, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "https"
}

func hasScheme(href string) bool {
	u, err := url.Parse(href)
	return err == nil && u.Scheme != ""
}
