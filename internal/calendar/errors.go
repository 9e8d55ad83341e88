package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	// ErrNoCalendarID is returned when neither an explicit nor a default
	// calendar id is available.
	ErrNoCalendarID = errors.New("no calendar id given and no default configured")

	// ErrMissingEventID is returned for update and delete calls without an id.
	ErrMissingEventID = errors.New("event id is required")
)

// RemoteError reports a failed Calendar API call. Err is the error returned
// by the generated client, usually a *googleapi.Error.
type RemoteError struct {
	Op         string
	CalendarID string
	EventID    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("calendar %s: failed to %s event %s: %v", e.CalendarID, e.Op, e.EventID, e.Err)
	}
	return fmt.Sprintf("calendar %s: failed to %s events: %v", e.CalendarID, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the failed call, or 0 when the call
// never produced a response.
func (e *RemoteError) StatusCode() int {
	var apiErr *googleapi.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// IsNotFound reports whether err is an API response saying the event does not
// exist. Deleted events answer 410 Gone, which counts as not found.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}

// IsRemote reports whether err came from a Calendar API call.
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}
