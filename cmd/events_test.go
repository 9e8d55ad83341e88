package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcalevents/internal/calendar"
	"github.com/teemow/gcalevents/internal/calendar/calendartest"
	"github.com/teemow/gcalevents/internal/config"
	"github.com/teemow/gcalevents/internal/instrumentation"
)

const testCalendar = "team@example.com"

func newTestApp(t *testing.T) (*app, *calendartest.Server) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	t.Setenv(config.EnvCalendarID, testCalendar)
	t.Setenv(config.EnvCredentials, "")
	t.Setenv(config.EnvTokenFile, "")
	t.Setenv(config.EnvLogLevel, "")

	srv := calendartest.NewServer(t)
	a := newApp()
	a.stderr = io.Discard
	a.newFactory = func(_ context.Context, a *app, metrics *instrumentation.Metrics) (*calendar.Factory, error) {
		return calendar.NewFactoryForService(srv.Service(), a.cfg.CalendarID,
			calendar.WithLogger(a.logger),
			calendar.WithMetrics(metrics),
		), nil
	}
	return a, srv
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedStandup(srv *calendartest.Server) *gcal.Event {
	return srv.Seed(testCalendar, &gcal.Event{
		Summary: "Standup",
		Start:   &gcal.EventDateTime{DateTime: "2024-01-02T09:00:00Z"},
		End:     &gcal.EventDateTime{DateTime: "2024-01-02T09:15:00Z"},
	})
}

func TestEventsCreate(t *testing.T) {
	a, srv := newTestApp(t)

	out, err := run(t, a, "events", "create",
		"--set", "name=Standup",
		"--set", "startDateTime=2024-01-02T09:00:00Z",
		"--set", "endDateTime=2024-01-02T09:15:00Z",
		"--set", `attendees:=[{"email":"ana@example.com"}]`,
	)
	require.NoError(t, err)
	require.Equal(t, 1, srv.Count(testCalendar))

	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "Standup", created["summary"])

	stored := srv.Event(testCalendar, created["id"].(string))
	require.NotNil(t, stored)
	require.Len(t, stored.Attendees, 1)
	assert.Equal(t, "ana@example.com", stored.Attendees[0].Email)
	assert.Equal(t, "2024-01-02T09:00:00Z", stored.Start.DateTime)
}

func TestEventsCreate_RequiresFields(t *testing.T) {
	a, srv := newTestApp(t)

	_, err := run(t, a, "events", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--set")
	assert.Zero(t, srv.Requests())
}

func TestEventsCreate_InvalidDate(t *testing.T) {
	a, srv := newTestApp(t)

	_, err := run(t, a, "events", "create", "--set", "startDate=tomorrow")
	require.Error(t, err)
	assert.Zero(t, srv.Requests())
}

func TestEventsList(t *testing.T) {
	a, srv := newTestApp(t)
	seedStandup(srv)
	srv.Seed(testCalendar, &gcal.Event{
		Summary: "Offsite",
		Start:   &gcal.EventDateTime{Date: "2024-06-10"},
		End:     &gcal.EventDateTime{Date: "2024-06-12"},
	})

	out, err := run(t, a, "events", "list", "--from", "2024-01-01T00:00:00Z", "--to", "2024-01-31T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "2024-01-02T09:00:00Z to 2024-01-02T09:15:00Z")
	assert.NotContains(t, out, "Offsite")

	query := srv.LastListQuery()
	assert.Equal(t, "2024-01-01T00:00:00Z", query.Get("timeMin"))
	assert.Equal(t, "true", query.Get("singleEvents"))

	out, err = run(t, a, "events", "list", "--from", "2024-06-01T00:00:00Z", "--to", "2024-06-30T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-10 to 2024-06-11 (all day)")
}

func TestEventsList_QueryAndParams(t *testing.T) {
	a, srv := newTestApp(t)
	seedStandup(srv)

	_, err := run(t, a, "events", "list",
		"--from", "2024-01-01T00:00:00Z",
		"--query", "Stand",
		"--param", "orderBy=startTime",
		"--param", "singleEvents=true",
	)
	require.NoError(t, err)

	query := srv.LastListQuery()
	assert.Equal(t, "Stand", query.Get("q"))
	assert.Equal(t, "startTime", query.Get("orderBy"))
}

func TestEventsList_ICS(t *testing.T) {
	a, srv := newTestApp(t)
	seedStandup(srv)

	out, err := run(t, a, "events", "list", "--from", "2024-01-01T00:00:00Z", "-o", "ics")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Standup")
}

func TestEventsList_InvalidFlags(t *testing.T) {
	a, srv := newTestApp(t)

	_, err := run(t, a, "events", "list", "--from", "next week")
	require.Error(t, err)

	_, err = run(t, a, "events", "list", "--param", "orderBy")
	require.Error(t, err)

	_, err = run(t, a, "events", "list", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")

	assert.Equal(t, 1, srv.Requests())
}

func TestEventsGetUpdateDelete(t *testing.T) {
	a, srv := newTestApp(t)
	seeded := seedStandup(srv)

	out, err := run(t, a, "events", "get", seeded.Id)
	require.NoError(t, err)
	assert.Contains(t, out, seeded.Id)

	_, err = run(t, a, "events", "update", seeded.Id, "--set", "name=Retro", "--set", "location=Room 4")
	require.NoError(t, err)
	stored := srv.Event(testCalendar, seeded.Id)
	assert.Equal(t, "Retro", stored.Summary)
	assert.Equal(t, "Room 4", stored.Location)
	assert.Equal(t, "2024-01-02T09:00:00Z", stored.Start.DateTime)

	out, err = run(t, a, "events", "delete", seeded.Id)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.Zero(t, srv.Count(testCalendar))

	_, err = run(t, a, "events", "get", seeded.Id)
	require.Error(t, err)
	assert.True(t, calendar.IsNotFound(err))
}

func TestEvents_CalendarFlag(t *testing.T) {
	a, srv := newTestApp(t)
	other := srv.Seed("other@example.com", &gcal.Event{Summary: "Elsewhere"})

	out, err := run(t, a, "--calendar", "other@example.com", "events", "get", other.Id, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Elsewhere")
}

func TestEvents_NoCalendarConfigured(t *testing.T) {
	a, srv := newTestApp(t)
	t.Setenv(config.EnvCalendarID, "")

	_, err := run(t, a, "events", "list")
	require.ErrorIs(t, err, calendar.ErrNoCalendarID)
	assert.Zero(t, srv.Requests())
}

func TestParseSets(t *testing.T) {
	fields, err := parseSets([]string{
		"name=Launch",
		"description=a=b",
		"guestsCanModify:=true",
		"reminders:={\"useDefault\":false}",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":            "Launch",
		"description":     "a=b",
		"guestsCanModify": true,
		"reminders":       map[string]any{"useDefault": false},
	}, fields)

	for _, bad := range []string{"name", "=x", ":=1", "count:=nope"} {
		_, err := parseSets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseTimeFlag(t *testing.T) {
	got, err := parseTimeFlag("from", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimeFlag("from", "2024-05-01T12:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	got, err = parseTimeFlag("to", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)))

	_, err = parseTimeFlag("to", "05/01/2024")
	assert.ErrorContains(t, err, "--to")
}
