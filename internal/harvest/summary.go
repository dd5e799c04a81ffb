package harvest

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/printer-harvest/internal/model"
)

// Summary tallies one run. It is safe for concurrent use.
type Summary struct {
	RunID string

	mu         sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
	report     Report
}

// Report is the serializable snapshot of a Summary.
type Report struct {
	RunID        string  `json:"run_id"`
	ElapsedSecs  float64 `json:"elapsed_secs"`
	TasksRun     int     `json:"tasks_run"`
	TasksSkipped int     `json:"tasks_skipped"`
	StoppedEarly bool    `json:"stopped_early"`

	URLsDiscovered int            `json:"urls_discovered"`
	DuplicateURLs  int            `json:"duplicate_urls"`
	NoAnchors      int            `json:"no_anchors"`
	URLsByCategory map[string]int `json:"urls_by_category"`
	URLsBySource   map[string]int `json:"urls_by_source"`

	RecordsExtracted  int            `json:"records_extracted"`
	DuplicateRecords  int            `json:"duplicate_records"`
	Rejected          int            `json:"rejected_other"`
	NoImages          int            `json:"no_image_skips"`
	RecordsByCategory map[string]int `json:"records_by_category"`
	RecordsBySource   map[string]int `json:"records_by_source"`

	Failures         map[string]int `json:"failures_by_kind"`
	FailuresBySource map[string]int `json:"failures_by_source"`
}

// NewSummary starts a summary with a fresh run id.
func NewSummary() *Summary {
	id := uuid.New().String()
	return &Summary{
		RunID:     id,
		startedAt: time.Now(),
		report: Report{
			RunID:             id,
			URLsByCategory:    make(map[string]int),
			URLsBySource:      make(map[string]int),
			RecordsByCategory: make(map[string]int),
			RecordsBySource:   make(map[string]int),
			Failures:          make(map[string]int),
			FailuresBySource:  make(map[string]int),
		},
	}
}

// Finish stamps the end time. Elapsed keeps growing until it is called.
func (s *Summary) Finish() {
	s.mu.Lock()
	s.finishedAt = time.Now()
	s.mu.Unlock()
}

// Elapsed returns the run duration so far.
func (s *Summary) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed()
}

func (s *Summary) elapsed() time.Duration {
	if s.finishedAt.IsZero() {
		return time.Since(s.startedAt)
	}
	return s.finishedAt.Sub(s.startedAt)
}

// Report returns a copy of the current counts.
func (s *Summary) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.report
	r.ElapsedSecs = s.elapsed().Seconds()
	r.URLsByCategory = copyCounts(s.report.URLsByCategory)
	r.URLsBySource = copyCounts(s.report.URLsBySource)
	r.RecordsByCategory = copyCounts(s.report.RecordsByCategory)
	r.RecordsBySource = copyCounts(s.report.RecordsBySource)
	r.Failures = copyCounts(s.report.Failures)
	r.FailuresBySource = copyCounts(s.report.FailuresBySource)
	return r
}

// MarshalJSON encodes the current report.
func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Report())
}

func (s *Summary) update(fn func(r *Report)) {
	s.mu.Lock()
	fn(&s.report)
	s.mu.Unlock()
}

func (s *Summary) taskDone() {
	s.update(func(r *Report) { r.TasksRun++ })
}

func (s *Summary) stopEarly(skipped int) {
	s.update(func(r *Report) {
		r.StoppedEarly = true
		r.TasksSkipped += skipped
	})
}

func (s *Summary) urlAccepted(src model.SourceID, cat model.Category) {
	s.update(func(r *Report) {
		r.URLsDiscovered++
		r.URLsByCategory[cat.String()]++
		r.URLsBySource[string(src)]++
	})
}

func (s *Summary) duplicateURL() {
	s.update(func(r *Report) { r.DuplicateURLs++ })
}

func (s *Summary) noAnchors() {
	s.update(func(r *Report) { r.NoAnchors++ })
}

func (s *Summary) failure(src model.SourceID, err error) {
	kind := model.KindOf(err)
	s.update(func(r *Report) {
		r.Failures[string(kind)]++
		r.FailuresBySource[string(src)]++
	})
}

func (s *Summary) noImages() {
	s.update(func(r *Report) { r.NoImages++ })
}

func (s *Summary) rejected() {
	s.update(func(r *Report) { r.Rejected++ })
}

func (s *Summary) duplicateRecord() {
	s.update(func(r *Report) { r.DuplicateRecords++ })
}

func (s *Summary) recordAccepted(src model.SourceID, cat model.Category) {
	s.update(func(r *Report) {
		r.RecordsExtracted++
		r.RecordsByCategory[cat.String()]++
		r.RecordsBySource[string(src)]++
	})
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
