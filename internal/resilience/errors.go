package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/printer-harvest/internal/model"
)

type statusCoder interface {
	StatusCode() int
}

// transientMarkers are substrings of network failures reported as plain
// strings by browsers and HTTP clients.
var transientMarkers = []string{
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"tls handshake timeout",
	"temporary failure in name resolution",
	"server closed idle connection",
	"err_connection_reset",
	"err_connection_closed",
	"err_timed_out",
	"err_network_changed",
	"err_empty_response",
	"err_http2_protocol_error",
}

// Retryable reports whether a failed page load is worth another attempt.
// Timeouts and transport failures are; blocks, extraction problems and
// client-side HTTP errors are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrCircuitOpen) {
		return false
	}

	switch model.KindOf(err) {
	case model.KindLoadTimeout:
		return true
	case model.KindBlocked, model.KindExtraction, model.KindNoAnchors,
		model.KindRejected, model.KindDuplicateRecord, model.KindCircuitOpen:
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return TransientStatus(sc.StatusCode())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// TransientStatus reports whether an HTTP status is worth retrying.
func TransientStatus(code int) bool {
	switch code {
	case 408, 425, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Trips reports whether err says something about the health of the source
// itself. Listing-level problems such as a missing title do not count.
func Trips(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	switch model.KindOf(err) {
	case model.KindLoadTimeout, model.KindLoadError, model.KindBlocked:
		return true
	case model.KindUnknown:
		return Retryable(err)
	default:
		return false
	}
}
