package event

import (
	"errors"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Layouts used by the Calendar API.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// ErrInvalidDate is returned when a date field is written with a value that
// is neither a time nor a string in the field's layout.
var ErrInvalidDate = errors.New("invalid date value")

// DateParseError reports a stored date that does not match its layout.
type DateParseError struct {
	Path  string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("failed to parse %s %q: %v", e.Path, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

func layoutFor(path string) string {
	if isDateOnlyPath(path) {
		return DateLayout
	}
	return DateTimeLayout
}

// readDate parses the date or date-time stored for path. The zero time and
// false are returned when nothing is stored.
func readDate(edt *calendar.EventDateTime, path string) (time.Time, bool, error) {
	if edt == nil {
		return time.Time{}, false, nil
	}

	raw := edt.DateTime
	if isDateOnlyPath(path) {
		raw = edt.Date
	}
	if raw == "" {
		return time.Time{}, false, nil
	}

	t, err := time.Parse(layoutFor(path), raw)
	if err != nil {
		return time.Time{}, false, &DateParseError{Path: path, Value: raw, Err: err}
	}
	if !isDateOnlyPath(path) && edt.TimeZone != "" {
		if loc, err := time.LoadLocation(edt.TimeZone); err == nil {
			t = t.In(loc)
		}
	}
	return t, true, nil
}

// buildDate returns a fresh boundary holding value in the layout for path.
func buildDate(path string, value any) (*calendar.EventDateTime, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return nil, fmt.Errorf("%w: nil time for %s", ErrInvalidDate, path)
		}
		t = *v
	case string:
		parsed, err := time.Parse(layoutFor(path), v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q for %s: %v", ErrInvalidDate, v, path, err)
		}
		t = parsed
	default:
		return nil, fmt.Errorf("%w: %T for %s", ErrInvalidDate, value, path)
	}

	if isDateOnlyPath(path) {
		return &calendar.EventDateTime{Date: t.Format(DateLayout)}, nil
	}

	edt := &calendar.EventDateTime{DateTime: t.Format(DateTimeLayout)}
	if name := t.Location().String(); name != "" && name != "Local" {
		// Fixed offsets carry no IANA name; the offset in DateTime suffices.
		if _, err := time.LoadLocation(name); err == nil {
			edt.TimeZone = name
		}
	}
	return edt, nil
}
