// Package model defines the records that flow through the harvest pipeline.
package model

import (
	"fmt"
	"strings"
)

// ImageSlots is the fixed number of image columns on every product record.
const ImageSlots = 4

// SourceID identifies one marketplace.
type SourceID string

const (
	SourceAmazon       SourceID = "amazon"
	SourceEbay         SourceID = "ebay"
	SourceAliExpress   SourceID = "aliexpress"
	SourceHarveyNorman SourceID = "harvey_norman"
	SourceChallenger   SourceID = "challenger"
	SourceLazada       SourceID = "lazada"
	SourceOther        SourceID = "other"
)

// SearchableSources lists every source with a search page, in display order.
func SearchableSources() []SourceID {
	return []SourceID{SourceAmazon, SourceEbay, SourceAliExpress, SourceHarveyNorman, SourceChallenger, SourceLazada}
}

// IsSearchable reports whether id names a source with a search page.
func (id SourceID) IsSearchable() bool {
	for _, s := range SearchableSources() {
		if s == id {
			return true
		}
	}
	return false
}

// SearchTask is one (brand, category, keyword variant) search.
type SearchTask struct {
	Brand    string
	Category Category
	Keyword  string
}

// Query returns the free-text search string sent to a source.
func (t SearchTask) Query() string {
	return t.Brand + " " + t.Keyword
}

// CollectedURL is a canonical listing URL discovered during the URL phase.
type CollectedURL struct {
	URL      string
	Source   SourceID
	Brand    string
	Category Category
}

// ProductRecord is one extracted product.
type ProductRecord struct {
	SourceURL string
	Source    SourceID
	Brand     string
	ProductID string
	Title     string
	Category  Category
	Images    [ImageSlots]string
}

// HasImages reports whether at least one image slot is filled.
func (r ProductRecord) HasImages() bool {
	return HasImages(r.Images)
}

// HasImages reports whether any slot is non-empty.
func HasImages(images [ImageSlots]string) bool {
	for _, img := range images {
		if img != "" {
			return true
		}
	}
	return false
}

// PadImages drops empty and duplicate candidates, keeps discovery order,
// and returns exactly ImageSlots entries.
func PadImages(candidates []string) [ImageSlots]string {
	var out [ImageSlots]string
	seen := make(map[string]bool, len(candidates))
	n := 0
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out[n] = c
		n++
		if n == ImageSlots {
			break
		}
	}
	return out
}

// RecordKey is the per-run uniqueness key for product records.
type RecordKey struct {
	Source SourceID
	Brand  string
	Title  string
}

// NewRecordKey builds a key with the title trimmed.
func NewRecordKey(source SourceID, brand, title string) RecordKey {
	return RecordKey{Source: source, Brand: brand, Title: strings.TrimSpace(title)}
}

// ProductID returns the synthetic id for the seq-th input row of a source and brand.
func ProductID(source SourceID, brand string, seq int) string {
	return fmt.Sprintf("%s_%s_%03d", source, brand, seq)
}
