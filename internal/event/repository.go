package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	calendar "google.golang.org/api/calendar/v3"

	gcal "github.com/teemow/gcalevents/internal/calendar"
	"github.com/teemow/gcalevents/internal/logging"
)

// GatewayFactory resolves a calendar id to a gateway. An empty id selects
// the configured default. *calendar.Factory implements it.
type GatewayFactory interface {
	ForCalendar(calendarID string) (gcal.Gateway, error)
}

// ErrUnsentFields is returned by Save when the event carries fields the
// calendar record has no place for.
var ErrUnsentFields = errors.New("fields cannot be stored on a calendar event")

// UnsentFieldsError names the extra fields that stopped a save.
type UnsentFieldsError struct {
	Paths []string
}

func (e *UnsentFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsentFields, strings.Join(e.Paths, ", "))
}

func (e *UnsentFieldsError) Unwrap() error {
	return ErrUnsentFields
}

// ListOptions selects the events returned by Repository.Get.
type ListOptions struct {
	CalendarID string
	// TimeMin defaults to the start of today.
	TimeMin *time.Time
	// TimeMax defaults to the end of the day one year from now.
	TimeMax *time.Time
	// Params are provider query parameters (q, orderBy, maxResults, ...).
	// They override the list defaults.
	Params url.Values
}

// Repository performs event operations through calendar gateways.
type Repository struct {
	gateways GatewayFactory
	logger   *slog.Logger
}

// NewRepository creates a repository on top of gateways.
func NewRepository(gateways GatewayFactory, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{gateways: gateways, logger: logger}
}

// Get lists events in remote order.
func (r *Repository) Get(ctx context.Context, opts ListOptions) ([]*Event, error) {
	gw, err := r.gateway(opts.CalendarID)
	if err != nil {
		return nil, err
	}

	items, err := gw.ListEvents(ctx, opts.TimeMin, opts.TimeMax, opts.Params)
	if err != nil {
		return nil, err
	}

	return lo.Map(items, func(item *calendar.Event, _ int) *Event {
		return FromRemote(item, gw.CalendarID())
	}), nil
}

// Find returns exactly one event. A missing event is an error satisfying
// calendar.IsNotFound.
func (r *Repository) Find(ctx context.Context, eventID, calendarID string) (*Event, error) {
	gw, err := r.gateway(calendarID)
	if err != nil {
		return nil, err
	}

	record, err := gw.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return FromRemote(record, gw.CalendarID()), nil
}

// Create builds an event from field assignments and inserts it. Fields are
// applied in sorted key order.
func (r *Repository) Create(ctx context.Context, fields map[string]any, calendarID string) (*Event, error) {
	ev := New(calendarID)

	names := lo.Keys(fields)
	slices.Sort(names)
	for _, name := range names {
		if err := ev.Set(name, fields[name]); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	return r.Save(ctx, ev)
}

// Save inserts ev when it has no id and updates it otherwise. The returned
// event wraps the API response; ev itself is left untouched. An event with
// extra fields is rejected with an *UnsentFieldsError before any remote call.
func (r *Repository) Save(ctx context.Context, ev *Event) (*Event, error) {
	if extra := ev.Extra(); len(extra) > 0 {
		paths := lo.Keys(extra)
		slices.Sort(paths)
		return nil, &UnsentFieldsError{Paths: paths}
	}

	gw, err := r.gateway(ev.CalendarID())
	if err != nil {
		return nil, err
	}

	var saved *calendar.Event
	if ev.Exists() {
		saved, err = gw.UpdateEvent(ctx, ev.Record())
	} else {
		saved, err = gw.InsertEvent(ctx, ev.Record())
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("event saved",
		logging.CalendarID(gw.CalendarID()),
		logging.EventID(saved.Id),
	)
	return FromRemote(saved, gw.CalendarID()), nil
}

// Delete removes the event with eventID, or ev's own id when eventID is
// empty, from ev's calendar. A nil ev deletes eventID from the default
// calendar; see DeleteByID to name another calendar.
func (r *Repository) Delete(ctx context.Context, ev *Event, eventID string) error {
	if ev == nil {
		return r.DeleteByID(ctx, eventID, "")
	}
	if eventID == "" {
		eventID = ev.ID()
	}
	return r.DeleteByID(ctx, eventID, ev.CalendarID())
}

// DeleteByID removes an event by id.
func (r *Repository) DeleteByID(ctx context.Context, eventID, calendarID string) error {
	gw, err := r.gateway(calendarID)
	if err != nil {
		return err
	}
	return gw.DeleteEvent(ctx, eventID)
}

func (r *Repository) gateway(calendarID string) (gcal.Gateway, error) {
	gw, err := r.gateways.ForCalendar(calendarID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve calendar: %w", err)
	}
	return gw, nil
}
