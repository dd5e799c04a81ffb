package urlnorm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		href string
		base string
		want string
	}{
		{"empty", "  ", "https://www.amazon.sg", ""},
		{"root relative", "/Canon-PIXMA/dp/B0ABC?ref=sr_1", "https://www.amazon.sg/s?k=canon", "https://www.amazon.sg/Canon-PIXMA/dp/B0ABC"},
		{"protocol relative", "//www.aliexpress.com/item/100.html?spm=x", "https://www.aliexpress.com", "https://www.aliexpress.com/item/100.html"},
		{"protocol relative no base", "//img.example.com/a.jpg", "", "https://img.example.com/a.jpg"},
		{"absolute keeps host", "https://www.ebay.com/itm/123?hash=1", "https://www.amazon.sg", "https://www.ebay.com/itm/123"},
		{"fragment stripped", "https://www.challenger.sg/products/x#reviews", "", "https://www.challenger.sg/products/x"},
		{"path relative", "hp-ink.html?x=1", "https://www.harveynorman.com.sg/printers/", "https://www.harveynorman.com.sg/printers/hp-ink.html"},
		{"root relative without base", "/dp/B01", "", "/dp/B01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.href, tt.base))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	base := "https://www.harveynorman.com.sg/search?q=hp"
	hrefs := []string{
		"/hp-smart-tank-580.html?srsltid=abc",
		"//www.harveynorman.com.sg/canon-g3010.html",
		"https://www.harveynorman.com.sg/epson.html#top",
		"relative/page.html",
		"/",
		"",
	}
	for _, h := range hrefs {
		once := Normalize(h, base)
		assert.Equal(t, once, Normalize(once, base), h)
	}
}

func TestResolve_KeepsQuery(t *testing.T) {
	page := "https://www.ebay.com/itm/123"
	assert.Equal(t, "https://i.ebayimg.com/images/g/a/s-l1600.jpg?set=1", Resolve("//i.ebayimg.com/images/g/a/s-l1600.jpg?set=1", page))
	assert.Equal(t, "https://www.ebay.com/img/a.jpg?w=500", Resolve("/img/a.jpg?w=500", page))
	assert.Equal(t, "https://cdn.example.com/x.png", Resolve("https://cdn.example.com/x.png", page))
	assert.Equal(t, "", Resolve("a.jpg", ""))
	assert.Equal(t, "", Resolve(" ", page))
}

func TestOriginAndHost(t *testing.T) {
	assert.Equal(t, "https://www.amazon.sg", Origin("https://www.amazon.sg/s?k=hp"))
	assert.Equal(t, "", Origin("/dp/B01"))
	assert.Equal(t, "www.ebay.com", Host("https://WWW.eBay.com/itm/1"))
}

func TestSet_AddIsCheckAndInsert(t *testing.T) {
	s := NewSet[string]()
	assert.True(t, s.Add("a"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
	assert.Equal(t, 1, s.Len())
}

func TestSet_ConcurrentAddsAdmitEachKeyOnce(t *testing.T) {
	s := NewSet[string]()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won = make(map[string]int)
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := fmt.Sprintf("https://www.ebay.com/itm/%d", i)
				if s.Add(k) {
					mu.Lock()
					won[k]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, s.Len())
	assert.Len(t, won, 100)
	for k, n := range won {
		assert.Equal(t, 1, n, k)
	}
}
