package lichess

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrEmptyGameStream = errors.New("game stream closed before initial state")

// HTTPError is returned for any non-2xx response from the platform.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.StatusCode)
}

func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// IsFinal reports whether the platform rejected a request for a client-side
// reason. Such requests are not worth repeating.
func IsFinal(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError
}
