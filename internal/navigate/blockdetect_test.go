package navigate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	bigListing := "<html><body>" + strings.Repeat("<div class='s-result-item'>HP printer</div>", 2000) +
		"<script src='https://www.google.com/recaptcha/api.js'></script></body></html>"

	cfScript := "<script src='/cdn-cgi/challenge-platform/scripts/jsd/main.js'></script>"
	bigCloudflareListing := "<html><body>" + strings.Repeat("<div class='s-item'>Canon PG-47 ink</div>", 3000) +
		cfScript + "</body></html>"

	tests := []struct {
		name    string
		html    string
		blocked bool
		kind    BlockType
	}{
		{"normal page", "<html><body><h1>HP LaserJet</h1>" + strings.Repeat("x", 3000) + "</body></html>", false, BlockNone},
		{"amazon captcha", `<form action="/errors/validateCaptcha">Enter the characters you see below</form>`, true, BlockCaptcha},
		{"cloudflare", `<div id="cf-browser-verification">Checking your browser before accessing</div>`, true, BlockCloudflare},
		{"small captcha page", `<html><body>Please solve the captcha</body></html>`, true, BlockCaptcha},
		{"large page embedding recaptcha", bigListing, false, BlockNone},
		{"large page loading challenge-platform script", bigCloudflareListing, false, BlockNone},
		{"small challenge-platform interstitial", "<html><head><title>Just a moment...</title></head><body>" + cfScript + "</body></html>", true, BlockCloudflare},
		{"js shell", `<html><noscript>Please enable JavaScript</noscript></html>`, true, BlockJSShell},
		{"meta refresh", `<html><head><meta http-equiv="refresh" content="0;url=/"></head></html>`, true, BlockJSShell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, kind := DetectBlock(tt.html)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.kind, kind)
		})
	}
}
