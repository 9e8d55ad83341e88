// Package calendartest provides an in-process fake of the Calendar v3 events
// endpoints for tests.
package calendartest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const basePath = "/calendar/v3/"

// Server serves calendars/{calendarId}/events from memory.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	calendars map[string]*store
	lastList  url.Values
	requests  int
}

type store struct {
	order  []string
	events map[string]*calendar.Event
}

// NewServer starts a fake server. It is closed when the test ends.
func NewServer(t interface{ Cleanup(func()) }) *Server {
	s := &Server{calendars: make(map[string]*store)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// ClientOptions points a Calendar service at the fake server.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.URL + basePath),
		option.WithHTTPClient(s.Client()),
	}
}

// Service returns a Calendar service talking to the fake server.
func (s *Server) Service() *calendar.Service {
	svc, err := calendar.NewService(context.Background(), s.ClientOptions()...)
	if err != nil {
		panic(fmt.Sprintf("calendartest: %v", err))
	}
	return svc
}

// Seed stores event on calendarID, assigning an id if it has none.
func (s *Server) Seed(calendarID string, event *calendar.Event) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(calendarID, event)
}

// Event returns the stored event or nil.
func (s *Server) Event(calendarID, eventID string) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	cal, ok := s.calendars[calendarID]
	if !ok {
		return nil
	}
	return cal.events[eventID]
}

// Count returns the number of events stored on calendarID.
func (s *Server) Count(calendarID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cal, ok := s.calendars[calendarID]; ok {
		return len(cal.events)
	}
	return 0
}

// LastListQuery returns the query of the most recent list request.
func (s *Server) LastListQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastList
}

// Requests returns how many requests the server has answered.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	rest, ok := strings.CutPrefix(r.URL.Path, basePath+"calendars/")
	if !ok {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[1] != "events" {
		writeError(w, http.StatusNotFound, "notFound")
		return
	}
	calendarID := parts[0]
	eventID := ""
	if len(parts) > 2 {
		eventID = parts[2]
	}

	switch {
	case eventID == "" && r.Method == http.MethodGet:
		s.list(w, r, calendarID)
	case eventID == "" && r.Method == http.MethodPost:
		var event calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			writeError(w, http.StatusBadRequest, "badRequest")
			return
		}
		writeJSON(w, http.StatusOK, s.insert(calendarID, &event))
	case r.Method == http.MethodGet:
		event := s.lookup(calendarID, eventID)
		if event == nil {
			writeError(w, http.StatusNotFound, "notFound")
			return
		}
		writeJSON(w, http.StatusOK, event)
	case r.Method == http.MethodPut:
		current := s.lookup(calendarID, eventID)
		if current == nil {
			writeError(w, http.StatusNotFound, "notFound")
			return
		}
		var event calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			writeError(w, http.StatusBadRequest, "badRequest")
			return
		}
		event.Id = eventID
		event.Created = current.Created
		event.Updated = now()
		event.Etag = newEtag()
		if event.Status == "" {
			event.Status = "confirmed"
		}
		s.calendars[calendarID].events[eventID] = &event
		writeJSON(w, http.StatusOK, &event)
	case r.Method == http.MethodDelete:
		cal := s.calendars[calendarID]
		if s.lookup(calendarID, eventID) == nil {
			writeError(w, http.StatusNotFound, "notFound")
			return
		}
		delete(cal.events, eventID)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "methodNotAllowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, calendarID string) {
	query := r.URL.Query()
	s.lastList = query

	timeMin, _ := time.Parse(time.RFC3339, query.Get("timeMin"))
	timeMax, _ := time.Parse(time.RFC3339, query.Get("timeMax"))
	text := strings.ToLower(query.Get("q"))

	items := []*calendar.Event{}
	if cal, ok := s.calendars[calendarID]; ok {
		for _, id := range cal.order {
			event, ok := cal.events[id]
			if !ok {
				continue
			}
			start, end := bounds(event)
			if !timeMin.IsZero() && !end.IsZero() && !end.After(timeMin) {
				continue
			}
			if !timeMax.IsZero() && !start.IsZero() && !start.Before(timeMax) {
				continue
			}
			if text != "" && !strings.Contains(strings.ToLower(event.Summary), text) {
				continue
			}
			items = append(items, event)
		}
	}

	writeJSON(w, http.StatusOK, &calendar.Events{
		Kind:    "calendar#events",
		Summary: calendarID,
		Items:   items,
	})
}

func (s *Server) insert(calendarID string, event *calendar.Event) *calendar.Event {
	cal, ok := s.calendars[calendarID]
	if !ok {
		cal = &store{events: make(map[string]*calendar.Event)}
		s.calendars[calendarID] = cal
	}
	if event.Id == "" {
		event.Id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if event.Status == "" {
		event.Status = "confirmed"
	}
	event.Kind = "calendar#event"
	event.Etag = newEtag()
	event.Created = now()
	event.Updated = event.Created
	event.HtmlLink = "https://www.google.com/calendar/event?eid=" + event.Id
	if _, exists := cal.events[event.Id]; !exists {
		cal.order = append(cal.order, event.Id)
	}
	cal.events[event.Id] = event
	return event
}

func (s *Server) lookup(calendarID, eventID string) *calendar.Event {
	cal, ok := s.calendars[calendarID]
	if !ok {
		return nil
	}
	return cal.events[eventID]
}

func bounds(event *calendar.Event) (time.Time, time.Time) {
	return parseEdge(event.Start), parseEdge(event.End)
}

func parseEdge(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, edt.DateTime)
		return t
	}
	t, _ := time.Parse("2006-01-02", edt.Date)
	return t
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newEtag() string {
	return fmt.Sprintf("%q", uuid.NewString())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	message := http.StatusText(status)
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors": []map[string]string{
				{"domain": "global", "reason": reason, "message": message},
			},
		},
	})
}
