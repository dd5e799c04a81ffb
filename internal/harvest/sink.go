package harvest

import (
	"github.com/sells-group/printer-harvest/internal/model"
	"github.com/sells-group/printer-harvest/internal/tabular"
)

// Sink receives the artifact of each phase.
type Sink interface {
	WriteURLs(urls []model.CollectedURL) error
	WriteProducts(records []model.ProductRecord) error
}

// FileSink overwrites tabular artifacts on disk.
type FileSink struct {
	URLPath     string
	ProductPath string
}

// WriteURLs implements Sink.
func (s FileSink) WriteURLs(urls []model.CollectedURL) error {
	return tabular.WriteURLs(s.URLPath, urls)
}

// WriteProducts implements Sink.
func (s FileSink) WriteProducts(records []model.ProductRecord) error {
	return tabular.WriteProducts(s.ProductPath, records)
}
