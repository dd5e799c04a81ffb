package harvest

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/printer-harvest/internal/model"
)

func TestSummary_JSON(t *testing.T) {
	s := NewSummary()
	s.urlAccepted(model.SourceAmazon, model.CategoryInk)
	s.recordAccepted(model.SourceAmazon, model.CategoryInk)
	s.failure(model.SourceEbay, model.NewHarvestError(model.KindLoadTimeout, model.SourceEbay, "", nil))
	s.failure(model.SourceEbay, errors.New("plain"))
	s.Finish()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	_, err = uuid.Parse(got["run_id"].(string))
	assert.NoError(t, err)
	assert.EqualValues(t, 1, got["urls_discovered"])
	assert.EqualValues(t, 1, got["records_extracted"])
	assert.Equal(t, map[string]any{"load_timeout": float64(1), "unknown": float64(1)}, got["failures_by_kind"])
	assert.Equal(t, map[string]any{"ebay": float64(2)}, got["failures_by_source"])
	assert.Equal(t, map[string]any{"Ink": float64(1)}, got["records_by_category"])
}

func TestSummary_ReportIsACopy(t *testing.T) {
	s := NewSummary()
	s.urlAccepted(model.SourceAmazon, model.CategoryPrinter)
	r := s.Report()
	r.URLsBySource["amazon"] = 99
	assert.Equal(t, 1, s.Report().URLsBySource["amazon"])
}

func TestSummary_ConcurrentUpdates(t *testing.T) {
	s := NewSummary()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.duplicateURL()
			s.noImages()
		}()
	}
	wg.Wait()
	r := s.Report()
	assert.Equal(t, 50, r.DuplicateURLs)
	assert.Equal(t, 50, r.NoImages)
}

func TestSummary_RunIDsDiffer(t *testing.T) {
	assert.NotEqual(t, NewSummary().RunID, NewSummary().RunID)
}
