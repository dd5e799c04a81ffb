package source

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/printer-harvest/internal/model"
)

// NewLazada returns the lazada.sg adapter.
func NewLazada(opts Options) Adapter {
	return newAdapter(model.SourceLazada, opts,
		searchProfile{
			urlTemplate: "https://www.lazada.sg/catalog/?q={q}",
			baseURL:     "https://www.lazada.sg",
			settle:      2500 * time.Millisecond,
			scrollSteps: 6,
			scrollPause: 400 * time.Millisecond,
			anchors:     MustSelectorChain("a[href*='/products/']"),
			accept: func(canonical string, _ *goquery.Selection, _ string) bool {
				return strings.Contains(canonical, "/products/")
			},
		},
		detailProfile{
			settle: 1800 * time.Millisecond,
			titles: []TitleStrategy{OGTitle(), DocumentTitle()},
			images: []ImageStrategy{
				OGImage(),
				ImagesWhere(isLazadaProductImage),
			},
		},
	)
}

func isLazadaProductImage(src string) bool {
	s := strings.ToLower(src)
	if !strings.Contains(s, "slatic.net") && !strings.Contains(s, "lazada") {
		return false
	}
	return !strings.Contains(s, "sprite") && !strings.Contains(s, "logo")
}
