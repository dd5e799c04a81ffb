package source

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/printer-harvest/internal/model"
)

// NewEbay returns the ebay.com adapter. Results pages render client side, so
// search waits for network idle before reading anchors.
func NewEbay(opts Options) Adapter {
	return newAdapter(model.SourceEbay, opts,
		searchProfile{
			urlTemplate: "https://www.ebay.com/sch/i.html?_nkw={q}",
			baseURL:     "https://www.ebay.com",
			waitIdle:    true,
			idleSettle:  2 * time.Second,
			anchors:     MustSelectorChain("a.s-item__link", "a[href*='/itm/']"),
			accept: func(canonical string, _ *goquery.Selection, _ string) bool {
				return strings.Contains(canonical, "/itm/")
			},
		},
		detailProfile{
			settle: 1200 * time.Millisecond,
			titles: []TitleStrategy{
				OGTitle(),
				SelectorText(
					"h1.x-item-title__mainTitle span.ux-textspans--BOLD",
					"h1.x-item-title__mainTitle",
					"h1[itemprop='name']",
					"h1",
				),
				DocumentTitle(),
			},
			images: []ImageStrategy{
				OGImage(),
				ElementAttr("div.ux-image-carousel-item.active img", "src"),
				ImagesWhere(func(src string) bool {
					return strings.Contains(src, "i.ebayimg.com")
				}),
			},
		},
	)
}
