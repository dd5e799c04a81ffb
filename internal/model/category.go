package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category is the closed product taxonomy a title is classified into.
type Category int

const (
	CategoryOther Category = iota
	CategoryPrinter
	CategoryToner
	CategoryInk
)

// String returns the display name used in the Product_Type column.
func (c Category) String() string {
	switch c {
	case CategoryPrinter:
		return "Printer"
	case CategoryToner:
		return "Toner"
	case CategoryInk:
		return "Ink"
	default:
		return "Other"
	}
}

// QueryType returns the lower-case key used in config and the QueryType column.
func (c Category) QueryType() string {
	return strings.ToLower(c.String())
}

// Harvestable reports whether records of this category are kept.
func (c Category) Harvestable() bool {
	return c == CategoryPrinter || c == CategoryToner || c == CategoryInk
}

// HarvestCategories returns the kept categories in their precedence order.
func HarvestCategories() []Category {
	return []Category{CategoryPrinter, CategoryToner, CategoryInk}
}

// ParseCategory accepts either the display name or the query key, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "printer":
		return CategoryPrinter, nil
	case "toner":
		return CategoryToner, nil
	case "ink":
		return CategoryInk, nil
	case "other":
		return CategoryOther, nil
	}
	return CategoryOther, eris.Errorf("model: unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
