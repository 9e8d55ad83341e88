package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// CalendarScopes are the OAuth scopes requested for event management.
// Full calendar access is required to read, insert, update and delete events
// on calendars other than the primary one.
var CalendarScopes = []string{
	calendar.CalendarScope,
}
