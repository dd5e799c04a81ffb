package navigate

import (
	"strings"
)

// BlockType describes the kind of anti-automation page detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// smallPage is the size under which weak markers (a bare "captcha") count.
// Real listing pages are far larger and often embed captcha widgets in footers.
const smallPage = 30 * 1024

var cloudflareMarkers = []string{
	"cf-browser-verification",
	"checking your browser before accessing",
	"cf-challenge-running",
}

var captchaMarkers = []string{
	"/errors/validatecaptcha",
	"enter the characters you see below",
	"px-captcha",
	"distil_r_captcha",
}

// DetectBlock inspects a rendered document for challenge or interstitial markup.
func DetectBlock(html string) (bool, BlockType) {
	lower := strings.ToLower(html)

	for _, m := range cloudflareMarkers {
		if strings.Contains(lower, m) {
			return true, BlockCloudflare
		}
	}
	for _, m := range captchaMarkers {
		if strings.Contains(lower, m) {
			return true, BlockCaptcha
		}
	}

	if len(html) < smallPage {
		// Normal pages behind Cloudflare load /cdn-cgi/challenge-platform scripts,
		// so the path only counts on an interstitial-sized page.
		if strings.Contains(lower, "challenge-platform") ||
			(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge")) {
			return true, BlockCloudflare
		}
		if strings.Contains(lower, "captcha") {
			return true, BlockCaptcha
		}
	}

	// JS-only shell: tiny body with noscript or meta refresh.
	if len(html) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
