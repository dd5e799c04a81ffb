package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/printer-harvest/internal/model"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		url  string
		want model.SourceID
	}{
		{"https://www.amazon.sg/x/dp/B01", model.SourceAmazon},
		{"https://www.amazon.com/x/dp/B01", model.SourceAmazon},
		{"https://www.lazada.sg/products/x.html", model.SourceLazada},
		{"https://www.EBAY.com/itm/1", model.SourceEbay},
		{"https://www.aliexpress.com/item/1.html", model.SourceAliExpress},
		{"https://www.harveynorman.com.sg/x.html", model.SourceHarveyNorman},
		{"https://www.challenger.sg/products/x", model.SourceChallenger},
		{"https://shop.example.com/p/1", model.SourceOther},
		{"not a url", model.SourceOther},
		{"", model.SourceOther},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainOf(tt.url))
		})
	}
}

func TestRegistry_IDsInRegistrationOrder(t *testing.T) {
	r := DefaultRegistry(testOptions())
	assert.Equal(t, []model.SourceID{
		model.SourceAmazon,
		model.SourceEbay,
		model.SourceAliExpress,
		model.SourceHarveyNorman,
		model.SourceChallenger,
		model.SourceLazada,
	}, r.IDs())

	_, ok := r.Get(model.SourceOther)
	assert.False(t, ok, "fallback is not a searchable source")
}

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry(testOptions())

	assert.Equal(t, model.SourceEbay, r.Resolve(model.SourceEbay, "https://www.amazon.sg/dp/B1").ID())
	assert.Equal(t, model.SourceAmazon, r.Resolve("", "https://www.amazon.sg/dp/B1").ID())
	assert.Equal(t, model.SourceLazada, r.Resolve("bogus", "https://www.lazada.sg/products/1.html").ID())
	assert.Equal(t, model.SourceOther, r.Resolve("", "https://shop.example.com/1").ID())
}

func TestRegistry_Select(t *testing.T) {
	r := DefaultRegistry(testOptions())

	got, err := r.Select([]model.SourceID{model.SourceChallenger, model.SourceAmazon})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.SourceChallenger, got[0].ID())
	assert.Equal(t, model.SourceAmazon, got[1].ID())

	_, err = r.Select([]model.SourceID{"qoo10"})
	assert.Error(t, err)
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	r := NewRegistry(nil, NewAmazon(testOptions()), NewEbay(testOptions()))
	replacement := NewAmazon(testOptions())
	r.Register(replacement)

	assert.Equal(t, []model.SourceID{model.SourceAmazon, model.SourceEbay}, r.IDs())
	got, ok := r.Get(model.SourceAmazon)
	require.True(t, ok)
	assert.Same(t, replacement, got)
}
