package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-unit harvest failure. None of these abort a run.
type ErrorKind string

const (
	KindLoadTimeout     ErrorKind = "load_timeout"
	KindLoadError       ErrorKind = "load_error"
	KindBlocked         ErrorKind = "blocked"
	KindNoAnchors       ErrorKind = "no_anchors"
	KindExtraction      ErrorKind = "extraction_failure"
	KindRejected        ErrorKind = "classification_rejected"
	KindDuplicateRecord ErrorKind = "duplicate_record"
	KindCircuitOpen     ErrorKind = "circuit_open"
	KindUnknown         ErrorKind = "unknown"
)

// HarvestError carries a failure kind plus the unit of work it applies to.
type HarvestError struct {
	Kind   ErrorKind
	Source SourceID
	URL    string
	Err    error
}

func (e *HarvestError) Error() string {
	msg := string(e.Kind)
	if e.Source != "" {
		msg += " [" + string(e.Source) + "]"
	}
	if e.URL != "" {
		msg += " " + e.URL
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *HarvestError) Unwrap() error {
	return e.Err
}

// NewHarvestError wraps err with a kind.
func NewHarvestError(kind ErrorKind, source SourceID, url string, err error) *HarvestError {
	return &HarvestError{Kind: kind, Source: source, URL: url, Err: err}
}

// KindOf returns the kind of the first HarvestError in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var he *HarvestError
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
