package source

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/printer-harvest/internal/model"
)

// NewAmazon returns the amazon.sg adapter.
func NewAmazon(opts Options) Adapter {
	return newAdapter(model.SourceAmazon, opts,
		searchProfile{
			urlTemplate: "https://www.amazon.sg/s?k={q}",
			baseURL:     "https://www.amazon.sg",
			settle:      1500 * time.Millisecond,
			anchors: MustSelectorChain(
				"a.a-link-normal.s-underline-text.s-underline-link-text",
				"a.a-link-normal.s-no-outline",
			),
			accept: func(canonical string, _ *goquery.Selection, _ string) bool {
				return strings.Contains(canonical, "/dp/")
			},
		},
		detailProfile{
			settle: 1200 * time.Millisecond,
			titles: []TitleStrategy{
				OGTitle(),
				SelectorText("#productTitle"),
				DocumentTitle(),
			},
			images: []ImageStrategy{
				ElementAttr("img#landingImage", "src"),
				ImageManifest("img#landingImage", "data-a-dynamic-image"),
				OGImage(),
			},
		},
	)
}
