package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jeffail/gabs/v2"
	calendar "google.golang.org/api/calendar/v3"
)

// Event wraps one Calendar event record and exposes logical field access.
// An Event is not safe for concurrent use.
type Event struct {
	record     *calendar.Event
	extra      *gabs.Container
	calendarID string
}

// New returns an event with an empty record. An empty calendarID selects
// the configured default calendar when the event is saved.
func New(calendarID string) *Event {
	return FromRemote(nil, calendarID)
}

// FromRemote wraps an already fetched record without validating it.
func FromRemote(record *calendar.Event, calendarID string) *Event {
	if record == nil {
		record = &calendar.Event{}
	}
	return &Event{
		record:     record,
		extra:      gabs.New(),
		calendarID: calendarID,
	}
}

// Get returns the value stored for a logical field name or dotted path.
//
// Date fields are returned as time.Time, sortDate included. Other paths yield
// their JSON form (string, float64, bool, map or slice). A field that is not
// set returns nil and no error.
func (e *Event) Get(name string) (any, error) {
	if name == FieldSortDate {
		t, ok, err := e.sortDate()
		if err != nil || !ok {
			return nil, err
		}
		return t, nil
	}

	path := TranslateFieldName(name)
	if isDatePath(path) {
		t, ok, err := readDate(e.boundary(path), path)
		if err != nil || !ok {
			return nil, err
		}
		return t, nil
	}

	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	if doc.ExistsP(path) {
		return doc.Path(path).Data(), nil
	}
	if e.extra.ExistsP(path) {
		return e.extra.Path(path).Data(), nil
	}
	return nil, nil
}

// Set writes value to a logical field name or dotted path.
//
// Date fields accept time.Time, *time.Time or a string in the field's layout
// and replace the whole start or end boundary. Values for paths the record
// has no field for are kept as extra fields. Only date fields can fail.
func (e *Event) Set(name string, value any) error {
	path := TranslateFieldName(name)
	if isDatePath(path) {
		edt, err := buildDate(path, value)
		if err != nil {
			return err
		}
		if isStartPath(path) {
			e.record.Start = edt
		} else {
			e.record.End = edt
		}
		return nil
	}

	if s, ok := value.(string); ok && e.setString(path, s) {
		return nil
	}

	if value == nil {
		e.unset(path)
		return nil
	}

	if !e.setRecordPath(path, value) {
		_, _ = e.extra.SetP(value, path)
	}
	return nil
}

func (e *Event) setString(path, value string) bool {
	switch path {
	case "id":
		e.record.Id = value
	case "summary":
		e.record.Summary = value
	case "description":
		e.record.Description = value
	case "location":
		e.record.Location = value
	case "colorId":
		e.record.ColorId = value
	case "status":
		e.record.Status = value
	case "visibility":
		e.record.Visibility = value
	case "transparency":
		e.record.Transparency = value
	default:
		return false
	}
	return true
}

// setRecordPath applies value to the record's JSON form and decodes it back.
// It reports false when the record type has no field at path or the value
// does not fit that field's type.
func (e *Event) setRecordPath(path string, value any) bool {
	doc, err := e.document()
	if err != nil {
		return false
	}
	if _, err := doc.SetP(value, path); err != nil {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(doc.Bytes()))
	dec.DisallowUnknownFields()

	var updated calendar.Event
	if err := dec.Decode(&updated); err != nil {
		return false
	}
	e.record = &updated
	return true
}

func (e *Event) unset(path string) {
	if e.extra.ExistsP(path) {
		_ = e.extra.DeleteP(path)
	}

	doc, err := e.document()
	if err != nil || !doc.ExistsP(path) {
		return
	}
	if err := doc.DeleteP(path); err != nil {
		return
	}
	var updated calendar.Event
	if err := json.Unmarshal(doc.Bytes(), &updated); err == nil {
		e.record = &updated
	}
}

func (e *Event) document() (*gabs.Container, error) {
	raw, err := json.Marshal(e.record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event record: %w", err)
	}
	doc, err := gabs.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event record: %w", err)
	}
	return doc, nil
}

func (e *Event) boundary(path string) *calendar.EventDateTime {
	if isStartPath(path) {
		return e.record.Start
	}
	return e.record.End
}

// ID returns the remote identifier, empty before the first save.
func (e *Event) ID() string {
	return e.record.Id
}

// Name returns the event summary.
func (e *Event) Name() string {
	return e.record.Summary
}

// SetName sets the event summary.
func (e *Event) SetName(name string) {
	e.record.Summary = name
}

// StartDate returns the date-only start of an all-day event.
func (e *Event) StartDate() (time.Time, bool) {
	return e.date(PathStartDate)
}

// EndDate returns the date-only end of an all-day event.
func (e *Event) EndDate() (time.Time, bool) {
	return e.date(PathEndDate)
}

// StartDateTime returns the start of a timed event.
func (e *Event) StartDateTime() (time.Time, bool) {
	return e.date(PathStartDateTime)
}

// EndDateTime returns the end of a timed event.
func (e *Event) EndDateTime() (time.Time, bool) {
	return e.date(PathEndDateTime)
}

// SortDate returns the date-only start if set, else the timed start.
// A malformed stored value reads as unset.
func (e *Event) SortDate() (time.Time, bool) {
	t, ok, err := e.sortDate()
	if err != nil {
		return time.Time{}, false
	}
	return t, ok
}

func (e *Event) sortDate() (time.Time, bool, error) {
	t, ok, err := readDate(e.boundary(PathStartDate), PathStartDate)
	if err != nil || ok {
		return t, ok, err
	}
	return readDate(e.boundary(PathStartDateTime), PathStartDateTime)
}

func (e *Event) date(path string) (time.Time, bool) {
	t, ok, err := readDate(e.boundary(path), path)
	if err != nil {
		return time.Time{}, false
	}
	return t, ok
}

// CalendarID returns the calendar the event belongs to. Empty means the
// configured default.
func (e *Event) CalendarID() string {
	return e.calendarID
}

// Record returns the wrapped API record.
func (e *Event) Record() *calendar.Event {
	return e.record
}

// Extra returns the extra fields keyed by dotted path.
func (e *Event) Extra() map[string]any {
	flat, err := e.extra.Flatten()
	if err != nil {
		return map[string]any{}
	}
	return flat
}

// Exists reports whether the event has a remote identifier.
func (e *Event) Exists() bool {
	return e.record.Id != ""
}

// IsAllDayEvent reports whether the start carries no date-time.
func (e *Event) IsAllDayEvent() bool {
	return e.record.Start == nil || e.record.Start.DateTime == ""
}

// When formats the start and end for display. All-day ranges show the
// inclusive last day.
func (e *Event) When() string {
	if e.IsAllDayEvent() {
		start, ok := e.StartDate()
		if !ok {
			return "unscheduled"
		}
		end, ok := e.EndDate()
		if !ok || !end.After(start.AddDate(0, 0, 1)) {
			return start.Format(DateLayout) + " (all day)"
		}
		return fmt.Sprintf("%s to %s (all day)", start.Format(DateLayout), end.AddDate(0, 0, -1).Format(DateLayout))
	}

	start, _ := e.StartDateTime()
	end, ok := e.EndDateTime()
	if !ok {
		return start.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
}

// MarshalJSON encodes the record with the extra fields merged in.
func (e *Event) MarshalJSON() ([]byte, error) {
	doc, err := e.document()
	if err != nil {
		return nil, err
	}
	for path, value := range e.Extra() {
		_, _ = doc.SetP(value, path)
	}
	return doc.Bytes(), nil
}
