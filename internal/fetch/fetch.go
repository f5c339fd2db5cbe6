// Package fetch retrieves the storefront page over HTTP, with an optional
// headless-rendering fallback for script-heavy markup.
package fetch

import (
	"fmt"
	"net/http"
	"time"
)

// Page is the decoded result of one storefront request.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}

// Error signals a failed storefront request: either a non-2xx status or a
// transport-level failure. A zero StatusCode means the request never
// completed.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
