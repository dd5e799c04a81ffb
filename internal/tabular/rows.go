// Package tabular reads and writes the two harvest artifacts as CSV or XLSX.
package tabular

import (
	"strings"

	"github.com/sells-group/printer-harvest/internal/model"
)

// URLRow is one line of the collected-URL artifact.
type URLRow struct {
	URL       string `csv:"URL"`
	Source    string `csv:"Source"`
	Brand     string `csv:"Brand"`
	QueryType string `csv:"QueryType"`
}

// ProductRow is one line of the product dataset.
type ProductRow struct {
	URL          string `csv:"URL"`
	Source       string `csv:"Source"`
	Brand        string `csv:"Brand"`
	ProductID    string `csv:"Product_ID"`
	ProductTitle string `csv:"Product_Title"`
	ProductType  string `csv:"Product_Type"`
	ImageURL1    string `csv:"Image_URL_1"`
	ImageURL2    string `csv:"Image_URL_2"`
	ImageURL3    string `csv:"Image_URL_3"`
	ImageURL4    string `csv:"Image_URL_4"`
}

func urlRows(urls []model.CollectedURL) []URLRow {
	rows := make([]URLRow, 0, len(urls))
	for _, u := range urls {
		rows = append(rows, URLRow{
			URL:       u.URL,
			Source:    string(u.Source),
			Brand:     u.Brand,
			QueryType: u.Category.QueryType(),
		})
	}
	return rows
}

func productRows(records []model.ProductRecord) []ProductRow {
	rows := make([]ProductRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ProductRow{
			URL:          r.SourceURL,
			Source:       string(r.Source),
			Brand:        r.Brand,
			ProductID:    r.ProductID,
			ProductTitle: r.Title,
			ProductType:  r.Category.String(),
			ImageURL1:    r.Images[0],
			ImageURL2:    r.Images[1],
			ImageURL3:    r.Images[2],
			ImageURL4:    r.Images[3],
		})
	}
	return rows
}

// collected converts read rows back, dropping rows without a URL. An
// unrecognized QueryType reads as Other.
func collected(rows []URLRow) []model.CollectedURL {
	out := make([]model.CollectedURL, 0, len(rows))
	for _, r := range rows {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		cat, err := model.ParseCategory(r.QueryType)
		if err != nil {
			cat = model.CategoryOther
		}
		out = append(out, model.CollectedURL{
			URL:      u,
			Source:   model.SourceID(strings.TrimSpace(r.Source)),
			Brand:    strings.TrimSpace(r.Brand),
			Category: cat,
		})
	}
	return out
}
