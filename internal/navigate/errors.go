package navigate

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sells-group/printer-harvest/internal/model"
)

// StatusError is an HTTP response the static gateway refused to render.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("static: status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// categorize tags a navigation failure as a timeout or a generic load error.
func categorize(err error, url string) error {
	if err == nil {
		return nil
	}
	if model.KindOf(err) != model.KindUnknown {
		return err
	}
	return model.NewHarvestError(kindFor(err), "", url, err)
}

func kindFor(err error) model.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.KindLoadTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.KindLoadTimeout
	}
	return model.KindLoadError
}
