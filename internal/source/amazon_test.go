package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/printer-harvest/internal/model"
)

const amazonSearchHTML = `<html><head><title>Amazon.sg : HP printer</title></head><body>
<div class="s-result-item">
  <a class="a-link-normal s-underline-text s-underline-link-text" href="/HP-DeskJet-2820/dp/B0AAA?ref=sr_1_1">HP DeskJet 2820</a>
  <a class="a-link-normal s-underline-text s-underline-link-text" href="/HP-DeskJet-2820/dp/B0AAA?ref=sr_1_1&th=1">HP DeskJet 2820</a>
  <a class="a-link-normal s-underline-text s-underline-link-text" href="/sspa/click?ie=UTF8&url=%2FHP%2Fdp%2FB0ZZZ">Sponsored</a>
  <a class="a-link-normal s-underline-text s-underline-link-text" href="/HP-Smart-Tank/dp/B0BBB">HP Smart Tank</a>
  <a class="a-link-normal s-underline-text s-underline-link-text" href="/HP-Laser-107a/dp/B0CCC#reviews">HP Laser 107a</a>
</div></body></html>`

const amazonSearchAltHTML = `<html><body>
<a class="a-link-normal s-no-outline" href="https://www.amazon.sg/Canon-PG-47/dp/B0DDD?psc=1"><img src="x.jpg"></a>
</body></html>`

func TestAmazon_CollectSearchURLs(t *testing.T) {
	a := NewAmazon(testOptions())
	searchURL := "https://www.amazon.sg/s?k=HP+printer"
	page := newFakePage(map[string]string{searchURL: amazonSearchHTML})

	urls, err := a.CollectSearchURLs(context.Background(), page, "HP", "printer", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.amazon.sg/HP-DeskJet-2820/dp/B0AAA",
		"https://www.amazon.sg/HP-Smart-Tank/dp/B0BBB",
		"https://www.amazon.sg/HP-Laser-107a/dp/B0CCC",
	}, urls)
	assert.Equal(t, []string{searchURL}, page.loads)
}

func TestAmazon_CollectSearchURLs_RespectsLimit(t *testing.T) {
	a := NewAmazon(testOptions())
	page := newFakePage(map[string]string{"https://www.amazon.sg/s?k=HP+printer": amazonSearchHTML})

	urls, err := a.CollectSearchURLs(context.Background(), page, "HP", "printer", 2)
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestAmazon_CollectSearchURLs_FallbackSelector(t *testing.T) {
	a := NewAmazon(testOptions())
	page := newFakePage(map[string]string{"https://www.amazon.sg/s?k=Canon+ink+cartridge": amazonSearchAltHTML})

	urls, err := a.CollectSearchURLs(context.Background(), page, "Canon", "ink cartridge", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.amazon.sg/Canon-PG-47/dp/B0DDD"}, urls)
}

func TestAmazon_CollectSearchURLs_NoAnchors(t *testing.T) {
	a := NewAmazon(testOptions())
	page := newFakePage(map[string]string{"https://www.amazon.sg/s?k=HP+toner": "<html><body><p>No results for your search query.</p></body></html>"})

	urls, err := a.CollectSearchURLs(context.Background(), page, "HP", "toner", 50)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestAmazon_CollectSearchURLs_ExcludedPaths(t *testing.T) {
	opts := testOptions()
	opts.Exclude = map[model.SourceID][]string{model.SourceAmazon: {"/hp-laser-107a/*"}}
	a := NewAmazon(opts)
	page := newFakePage(map[string]string{"https://www.amazon.sg/s?k=HP+printer": amazonSearchHTML})

	urls, err := a.CollectSearchURLs(context.Background(), page, "HP", "printer", 50)
	require.NoError(t, err)
	assert.NotContains(t, urls, "https://www.amazon.sg/HP-Laser-107a/dp/B0CCC")
	assert.Len(t, urls, 2)
}

func TestAmazon_CollectSearchURLs_BlockedPage(t *testing.T) {
	a := NewAmazon(testOptions())
	page := newFakePage(map[string]string{
		"https://www.amazon.sg/s?k=HP+printer": `<form action="/errors/validateCaptcha"><p>Enter the characters you see below</p></form>`,
	})

	_, err := a.CollectSearchURLs(context.Background(), page, "HP", "printer", 50)
	require.Error(t, err)
	assert.Equal(t, model.KindBlocked, model.KindOf(err))
}

func TestAmazon_CollectSearchURLs_LoadErrorTaggedWithSource(t *testing.T) {
	a := NewAmazon(testOptions())
	page := newFakePage(map[string]string{})

	_, err := a.CollectSearchURLs(context.Background(), page, "HP", "printer", 50)
	require.Error(t, err)

	var he *model.HarvestError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, model.KindLoadError, he.Kind)
	assert.Equal(t, model.SourceAmazon, he.Source)
	assert.Equal(t, "https://www.amazon.sg/s?k=HP+printer", he.URL)
}

func TestAmazon_ExtractDetail(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantTitle string
		wantFirst string
		wantCount int
	}{
		{
			name: "og title and landing image",
			html: `<html><head><meta property="og:title" content="HP DeskJet 2820 All-in-One">
<meta property="og:image" content="https://m.media-amazon.com/images/I/og.jpg"></head>
<body><span id="productTitle">Ignored</span><img id="landingImage" src="https://m.media-amazon.com/images/I/main.jpg"></body></html>`,
			wantTitle: "HP DeskJet 2820 All-in-One",
			wantFirst: "https://m.media-amazon.com/images/I/main.jpg",
			wantCount: 2,
		},
		{
			name: "product title and dynamic image keys in order",
			html: `<html><head><title>Amazon.sg</title></head><body>
<span id="productTitle">
      HP 680 Black Ink Cartridge
</span>
<img id="landingImage" data-a-dynamic-image='{"https://m.media-amazon.com/images/I/z.jpg":[500,500],"https://m.media-amazon.com/images/I/a.jpg":[300,300],"https://m.media-amazon.com/images/I/m.jpg":[100,100]}'>
</body></html>`,
			wantTitle: "HP 680 Black Ink Cartridge",
			wantFirst: "https://m.media-amazon.com/images/I/z.jpg",
			wantCount: 3,
		},
		{
			name:      "document title and og image",
			html:      `<html><head><title>Canon PG-47 Ink</title><meta property="og:image" content="//m.media-amazon.com/images/I/og.jpg"></head><body></body></html>`,
			wantTitle: "Canon PG-47 Ink",
			wantFirst: "https://m.media-amazon.com/images/I/og.jpg",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "https://www.amazon.sg/x/dp/B0AAA"
			page := newFakePage(map[string]string{url: tt.html})

			d, err := NewAmazon(testOptions()).ExtractDetail(context.Background(), page, url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, d.Title)
			assert.Equal(t, tt.wantFirst, d.Images[0])

			n := 0
			for _, img := range d.Images {
				if img != "" {
					n++
				}
			}
			assert.Equal(t, tt.wantCount, n)
		})
	}
}

func TestAmazon_ExtractDetail_DynamicImageOrder(t *testing.T) {
	url := "https://www.amazon.sg/x/dp/B0AAA"
	page := newFakePage(map[string]string{url: `<html><body><span id="productTitle">HP 680</span>
<img id="landingImage" data-a-dynamic-image='{"https://m/3.jpg":[1,1],"https://m/1.jpg":[1,1],"https://m/2.jpg":[1,1],"https://m/4.jpg":[1,1],"https://m/5.jpg":[1,1]}'></body></html>`})

	d, err := NewAmazon(testOptions()).ExtractDetail(context.Background(), page, url)
	require.NoError(t, err)
	assert.Equal(t, [4]string{"https://m/3.jpg", "https://m/1.jpg", "https://m/2.jpg", "https://m/4.jpg"}, d.Images)
}

func TestAmazon_ExtractDetail_ManifestAndOGSupplementLandingImage(t *testing.T) {
	url := "https://www.amazon.sg/x/dp/B0AAA"
	page := newFakePage(map[string]string{url: `<html><head><meta property="og:image" content="https://m/og.jpg"></head>
<body><span id="productTitle">HP 680 Tri-color Ink</span>
<img id="landingImage" src="https://m/main.jpg" data-a-dynamic-image='{"https://m/big.jpg":[1500,1500],"https://m/main.jpg":[500,500],"https://m/small.jpg":[100,100]}'></body></html>`})

	d, err := NewAmazon(testOptions()).ExtractDetail(context.Background(), page, url)
	require.NoError(t, err)
	assert.Equal(t, [4]string{"https://m/main.jpg", "https://m/big.jpg", "https://m/small.jpg", "https://m/og.jpg"}, d.Images)
}

func TestAmazon_ExtractDetail_EmptyPage(t *testing.T) {
	url := "https://www.amazon.sg/x/dp/B0AAA"
	page := newFakePage(map[string]string{url: `<html><body><p>Page not available.</p></body></html>`})

	_, err := NewAmazon(testOptions()).ExtractDetail(context.Background(), page, url)
	require.Error(t, err)
	assert.Equal(t, model.KindExtraction, model.KindOf(err))
}
