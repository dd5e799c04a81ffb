package source

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/printer-harvest/internal/classify"
	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/urlnorm"
)

// genericDetail parses listings on sites without a dedicated detail layout.
func genericDetail() detailProfile {
	return detailProfile{
		settle: time.Second,
		titles: []TitleStrategy{OGTitle(), DocumentTitle()},
		images: []ImageStrategy{
			OGImage(),
			ImagesWhere(func(src string) bool {
				return strings.HasPrefix(src, "http") || strings.HasPrefix(src, "//")
			}),
		},
	}
}

// NewAliExpress returns the aliexpress.com adapter.
func NewAliExpress(opts Options) Adapter {
	return newAdapter(model.SourceAliExpress, opts,
		searchProfile{
			urlTemplate: "https://www.aliexpress.com/wholesale?SearchText={q}",
			baseURL:     "https://www.aliexpress.com",
			settle:      2500 * time.Millisecond,
			scrollSteps: 8,
			scrollPause: 400 * time.Millisecond,
			anchors:     MustSelectorChain("a[href*='/item/']"),
			accept: func(canonical string, _ *goquery.Selection, _ string) bool {
				return strings.Contains(canonical, "aliexpress.com/item")
			},
		},
		genericDetail(),
	)
}

// NewHarveyNorman returns the harveynorman.com.sg adapter. Its results pages
// link many unrelated .html pages, so anchors must mention the brand or a
// harvestable product word.
func NewHarveyNorman(opts Options) Adapter {
	return newAdapter(model.SourceHarveyNorman, opts,
		searchProfile{
			urlTemplate: "https://www.harveynorman.com.sg/search?q={q}",
			baseURL:     "https://www.harveynorman.com.sg",
			settle:      2500 * time.Millisecond,
			scrollSteps: 6,
			scrollPause: 400 * time.Millisecond,
			anchors:     MustSelectorChain("a[href$='.html']"),
			accept:      harveyNormanRelevant,
		},
		genericDetail(),
	)
}

func harveyNormanRelevant(canonical string, anchor *goquery.Selection, brand string) bool {
	if !strings.Contains(urlnorm.Host(canonical), "harveynorman.com.sg") {
		return false
	}
	haystack := canonical + " " + anchor.Text()
	for _, term := range []string{brand, "printer", "toner", "ink"} {
		if term != "" && classify.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// NewChallenger returns the challenger.sg adapter.
func NewChallenger(opts Options) Adapter {
	return newAdapter(model.SourceChallenger, opts,
		searchProfile{
			urlTemplate: "https://www.challenger.sg/search?q={q}",
			baseURL:     "https://www.challenger.sg",
			settle:      2500 * time.Millisecond,
			scrollSteps: 6,
			scrollPause: 400 * time.Millisecond,
			anchors:     MustSelectorChain("a[href*='/products/'], a[href*='/product/']"),
			accept: func(canonical string, _ *goquery.Selection, _ string) bool {
				return strings.Contains(canonical, "/product")
			},
		},
		genericDetail(),
	)
}

// NewGeneric returns the detail-only fallback used for URLs from unknown sites.
func NewGeneric(opts Options) Adapter {
	return newAdapter(model.SourceOther, opts, searchProfile{}, genericDetail())
}
