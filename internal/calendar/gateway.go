package calendar

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gcalevents/internal/instrumentation"
	"github.com/teemow/gcalevents/internal/logging"
)

// Gateway performs event calls against one calendar.
type Gateway interface {
	CalendarID() string
	ListEvents(ctx context.Context, timeMin, timeMax *time.Time, params url.Values) ([]*calendar.Event, error)
	GetEvent(ctx context.Context, eventID string) (*calendar.Event, error)
	InsertEvent(ctx context.Context, record *calendar.Event) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, record *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Client wraps the Google Calendar service for a single calendar id.
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

var _ Gateway = (*Client)(nil)

// CalendarID returns the calendar this client is bound to.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// ListEvents lists events between timeMin and timeMax.
//
// A nil timeMin means the start of today and a nil timeMax the end of the day
// one year from now. Recurring events are expanded into single instances
// unless params overrides singleEvents. Any other provider query parameter
// (q, orderBy, maxResults, showDeleted, ...) is passed through unchanged and
// wins over the defaults. Only the first result page is returned.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax *time.Time, params url.Values) ([]*calendar.Event, error) {
	now := c.now()
	query := url.Values{}
	query.Set("singleEvents", "true")
	if timeMin != nil {
		query.Set("timeMin", timeMin.Format(time.RFC3339))
	} else {
		query.Set("timeMin", startOfDay(now).Format(time.RFC3339))
	}
	if timeMax != nil {
		query.Set("timeMax", timeMax.Format(time.RFC3339))
	} else {
		query.Set("timeMax", endOfDay(now.AddDate(1, 0, 0)).Format(time.RFC3339))
	}
	for key, values := range params {
		query[key] = values
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	opts := make([]googleapi.CallOption, 0, len(keys))
	for _, key := range keys {
		opts = append(opts, googleapi.QueryParameter(key, query[key]...))
	}

	var items []*calendar.Event
	err := c.observe(ctx, instrumentation.OperationList, "", func(ctx context.Context) error {
		res, err := c.svc.Events.List(c.calendarID).Context(ctx).Do(opts...)
		if err != nil {
			return err
		}
		items = res.Items
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("listed events", "count", len(items))
	return items, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	if eventID == "" {
		return nil, ErrMissingEventID
	}

	var event *calendar.Event
	err := c.observe(ctx, instrumentation.OperationGet, eventID, func(ctx context.Context) error {
		var err error
		event, err = c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		return err
	})
	return event, err
}

// InsertEvent creates the record on the calendar and returns the stored copy.
func (c *Client) InsertEvent(ctx context.Context, record *calendar.Event) (*calendar.Event, error) {
	var created *calendar.Event
	err := c.observe(ctx, instrumentation.OperationInsert, "", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Events.Insert(c.calendarID, record).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("event inserted", logging.EventID(created.Id))
	return created, nil
}

// UpdateEvent replaces the stored event with record, addressed by record.Id.
func (c *Client) UpdateEvent(ctx context.Context, record *calendar.Event) (*calendar.Event, error) {
	if record.Id == "" {
		return nil, ErrMissingEventID
	}

	var updated *calendar.Event
	err := c.observe(ctx, instrumentation.OperationUpdate, record.Id, func(ctx context.Context) error {
		var err error
		updated, err = c.svc.Events.Update(c.calendarID, record.Id, record).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("event updated", logging.EventID(updated.Id))
	return updated, nil
}

// DeleteEvent deletes a calendar event.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrMissingEventID
	}

	err := c.observe(ctx, instrumentation.OperationDelete, eventID, func(ctx context.Context) error {
		return c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	})
	if err != nil {
		return err
	}

	c.logger.Info("event deleted", logging.EventID(eventID))
	return nil
}

// observe runs one API call inside a client span, records its metric and
// wraps a failure in a RemoteError.
func (c *Client) observe(ctx context.Context, op, eventID string, call func(ctx context.Context) error) error {
	var attrs []attribute.KeyValue
	if eventID != "" {
		attrs = append(attrs, instrumentation.EventIDAttr(eventID))
	}
	ctx, span := instrumentation.StartCalendarSpan(ctx, op, c.calendarID, attrs...)
	defer span.End()

	start := time.Now()
	err := call(ctx)
	duration := time.Since(start)

	if err != nil {
		err = &RemoteError{Op: op, CalendarID: c.calendarID, EventID: eventID, Err: err}
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordCalendarOperation(ctx, op, instrumentation.StatusError, duration)
		logging.WithOperation(c.logger, op).Debug("calendar call failed", logging.Err(err))
		return err
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordCalendarOperation(ctx, op, instrumentation.StatusSuccess, duration)
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
