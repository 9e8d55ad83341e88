package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	calendar "google.golang.org/api/calendar/v3"
)

func TestTranslateFieldName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"name", "summary"},
		{"startDate", "start.date"},
		{"endDate", "end.date"},
		{"startDateTime", "start.dateTime"},
		{"endDateTime", "end.dateTime"},
		{"summary", "summary"},
		{"location", "location"},
		{"start.timeZone", "start.timeZone"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranslateFieldName(tt.name))
		})
	}
}

func TestEvent_DateRoundTrip(t *testing.T) {
	value := time.Date(2024, 1, 2, 9, 30, 15, 0, time.UTC)
	midnight := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		field string
		want  time.Time
	}{
		{FieldStartDate, midnight},
		{FieldEndDate, midnight},
		{FieldStartDateTime, value},
		{FieldEndDateTime, value},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			ev := New("")
			require.NoError(t, ev.Set(tt.field, value))

			got, err := ev.Get(tt.field)
			require.NoError(t, err)
			require.IsType(t, time.Time{}, got)
			assert.True(t, tt.want.Equal(got.(time.Time)), "got %v, want %v", got, tt.want)
		})
	}
}

func TestEvent_DateTimeDropsSubSecond(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set(FieldStartDateTime, time.Date(2024, 1, 2, 9, 0, 0, 500, time.UTC)))

	got, ok := ev.StartDateTime()
	require.True(t, ok)
	assert.True(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC).Equal(got))
}

func TestEvent_SetDateStrings(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set(FieldStartDate, "2024-03-01"))
	require.NoError(t, ev.Set(FieldEndDateTime, "2024-03-01T10:00:00+02:00"))

	assert.Equal(t, "2024-03-01", ev.Record().Start.Date)
	assert.Equal(t, "2024-03-01T10:00:00+02:00", ev.Record().End.DateTime)
	assert.Empty(t, ev.Record().End.TimeZone)
}

func TestEvent_SetDatePointer(t *testing.T) {
	ev := New("")
	start := time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)
	require.NoError(t, ev.Set(FieldStartDateTime, &start))

	assert.Equal(t, "2024-05-06T07:00:00Z", ev.Record().Start.DateTime)
	assert.Equal(t, "UTC", ev.Record().Start.TimeZone)
}

func TestEvent_SetDateTimeFixedZone(t *testing.T) {
	ev := New("")
	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.FixedZone("+0200", 2*60*60))
	require.NoError(t, ev.Set(FieldStartDateTime, start))

	assert.Equal(t, "2024-05-06T09:00:00+02:00", ev.Record().Start.DateTime)
	assert.Empty(t, ev.Record().Start.TimeZone)
}

func TestEvent_SetInvalidDate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"number", FieldStartDate, 42},
		{"date-time string on date field", FieldStartDate, "2024-03-01T10:00:00Z"},
		{"date string on date-time field", FieldEndDateTime, "2024-03-01"},
		{"garbage", FieldEndDate, "tomorrow"},
		{"nil pointer", FieldStartDateTime, (*time.Time)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := New("")
			err := ev.Set(tt.field, tt.value)
			assert.ErrorIs(t, err, ErrInvalidDate)
			assert.Nil(t, ev.Record().Start)
			assert.Nil(t, ev.Record().End)
		})
	}
}

func TestEvent_DateWriteReplacesBoundary(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set(FieldStartDateTime, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)))
	assert.False(t, ev.IsAllDayEvent())

	require.NoError(t, ev.Set(FieldStartDate, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)))
	assert.True(t, ev.IsAllDayEvent())
	assert.Empty(t, ev.Record().Start.DateTime)
	assert.Empty(t, ev.Record().Start.TimeZone)

	got, err := ev.Get(FieldStartDateTime)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, ev.Set(FieldStartDateTime, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)))
	assert.False(t, ev.IsAllDayEvent())
	assert.Empty(t, ev.Record().Start.Date)
}

func TestEvent_SortDate(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		ev := New("")
		got, err := ev.Get(FieldSortDate)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("date-only start", func(t *testing.T) {
		ev := New("")
		require.NoError(t, ev.Set(FieldStartDate, "2024-03-01"))
		got, err := ev.Get(FieldSortDate)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("timed start", func(t *testing.T) {
		ev := New("")
		start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, ev.Set(FieldStartDateTime, start))
		got, ok := ev.SortDate()
		require.True(t, ok)
		assert.True(t, start.Equal(got))
	})

	t.Run("date wins when both are stored", func(t *testing.T) {
		ev := FromRemote(&calendar.Event{
			Start: &calendar.EventDateTime{Date: "2024-03-01", DateTime: "2024-03-05T09:00:00Z"},
		}, "")
		got, ok := ev.SortDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})
}

func TestEvent_MalformedStoredDate(t *testing.T) {
	ev := FromRemote(&calendar.Event{
		Start: &calendar.EventDateTime{Date: "03/01/2024"},
	}, "")

	_, err := ev.Get(FieldStartDate)
	var parseErr *DateParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, PathStartDate, parseErr.Path)
	assert.Equal(t, "03/01/2024", parseErr.Value)

	_, ok := ev.StartDate()
	assert.False(t, ok)

	got, err := ev.Get(FieldSortDate)
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, PathStartDate, parseErr.Path)
	assert.Nil(t, got)

	timed := FromRemote(&calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "tomorrow at nine"},
	}, "")
	_, err = timed.Get(FieldSortDate)
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, PathStartDateTime, parseErr.Path)
}

func TestEvent_DateTimeHonoursTimeZone(t *testing.T) {
	ev := FromRemote(&calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2024-03-01T09:00:00Z", TimeZone: "UTC"},
	}, "")

	got, ok := ev.StartDateTime()
	require.True(t, ok)
	assert.Equal(t, "UTC", got.Location().String())
}

func TestEvent_StringFields(t *testing.T) {
	ev := New("team@example.com")
	require.NoError(t, ev.Set(FieldName, "Standup"))
	require.NoError(t, ev.Set("description", "Daily sync"))
	require.NoError(t, ev.Set("location", "Room 1"))
	require.NoError(t, ev.Set("visibility", "private"))

	assert.Equal(t, "Standup", ev.Name())
	assert.Equal(t, "Standup", ev.Record().Summary)
	assert.Equal(t, "Daily sync", ev.Record().Description)
	assert.Equal(t, "Room 1", ev.Record().Location)
	assert.Equal(t, "private", ev.Record().Visibility)
	assert.Equal(t, "team@example.com", ev.CalendarID())

	got, err := ev.Get("summary")
	require.NoError(t, err)
	assert.Equal(t, "Standup", got)

	ev.SetName("Retro")
	got, err = ev.Get(FieldName)
	require.NoError(t, err)
	assert.Equal(t, "Retro", got)
}

func TestEvent_RecordPaths(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set("guestsCanModify", true))
	require.NoError(t, ev.Set("attendees", []any{
		map[string]any{"email": "alice@example.com"},
	}))
	require.NoError(t, ev.Set("reminders.useDefault", true))

	record := ev.Record()
	assert.True(t, record.GuestsCanModify)
	require.Len(t, record.Attendees, 1)
	assert.Equal(t, "alice@example.com", record.Attendees[0].Email)
	require.NotNil(t, record.Reminders)
	assert.True(t, record.Reminders.UseDefault)
	assert.Empty(t, ev.Extra())

	got, err := ev.Get("attendees.0.email")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)
}

func TestEvent_UnknownFields(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set("projectCode", "X-42"))
	require.NoError(t, ev.Set("meta.priority", 3))
	require.NoError(t, ev.Set("start.label", "kickoff"))
	require.NoError(t, ev.Set("summary", 12))

	got, err := ev.Get("projectCode")
	require.NoError(t, err)
	assert.Equal(t, "X-42", got)

	got, err = ev.Get("meta.priority")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ev.Get("start.label")
	require.NoError(t, err)
	assert.Equal(t, "kickoff", got)
	assert.Nil(t, ev.Record().Start)

	got, err = ev.Get("summary")
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	assert.Equal(t, map[string]any{
		"projectCode":   "X-42",
		"meta.priority": 3,
		"start.label":   "kickoff",
		"summary":       12,
	}, ev.Extra())

	got, err = ev.Get("missing.field")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvent_SetNilUnsets(t *testing.T) {
	ev := New("")
	require.NoError(t, ev.Set("projectCode", "X-42"))
	require.NoError(t, ev.Set("guestsCanModify", true))

	require.NoError(t, ev.Set("projectCode", nil))
	require.NoError(t, ev.Set("guestsCanModify", nil))

	assert.Empty(t, ev.Extra())
	assert.False(t, ev.Record().GuestsCanModify)
}

func TestEvent_ExistsAndAllDay(t *testing.T) {
	ev := New("")
	assert.False(t, ev.Exists())
	assert.True(t, ev.IsAllDayEvent())

	ev = FromRemote(&calendar.Event{
		Id:    "abc",
		Start: &calendar.EventDateTime{DateTime: "2024-01-02T09:00:00Z"},
	}, "primary")
	assert.True(t, ev.Exists())
	assert.False(t, ev.IsAllDayEvent())
	assert.Equal(t, "abc", ev.ID())
}

func TestEvent_FromRemoteNil(t *testing.T) {
	ev := FromRemote(nil, "primary")
	require.NotNil(t, ev.Record())
	assert.False(t, ev.Exists())
}

func TestEvent_MarshalJSON(t *testing.T) {
	ev := New("")
	ev.SetName("Standup")
	require.NoError(t, ev.Set(FieldStartDate, "2024-03-01"))
	require.NoError(t, ev.Set("projectCode", "X-42"))

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Standup", decoded["summary"])
	assert.Equal(t, "X-42", decoded["projectCode"])
	assert.Equal(t, map[string]any{"date": "2024-03-01"}, decoded["start"])
}

func TestWhen(t *testing.T) {
	tests := []struct {
		name   string
		record *calendar.Event
		want   string
	}{
		{
			name:   "unscheduled",
			record: &calendar.Event{},
			want:   "unscheduled",
		},
		{
			name: "single all-day",
			record: &calendar.Event{
				Start: &calendar.EventDateTime{Date: "2024-03-01"},
				End:   &calendar.EventDateTime{Date: "2024-03-02"},
			},
			want: "2024-03-01 (all day)",
		},
		{
			name: "multi-day all-day",
			record: &calendar.Event{
				Start: &calendar.EventDateTime{Date: "2024-03-01"},
				End:   &calendar.EventDateTime{Date: "2024-03-04"},
			},
			want: "2024-03-01 to 2024-03-03 (all day)",
		},
		{
			name: "timed",
			record: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-03-01T09:00:00Z"},
				End:   &calendar.EventDateTime{DateTime: "2024-03-01T10:00:00Z"},
			},
			want: "2024-03-01T09:00:00Z to 2024-03-01T10:00:00Z",
		},
		{
			name: "timed without end",
			record: &calendar.Event{
				Start: &calendar.EventDateTime{DateTime: "2024-03-01T09:00:00Z"},
			},
			want: "2024-03-01T09:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRemote(tt.record, "").When())
		})
	}
}
