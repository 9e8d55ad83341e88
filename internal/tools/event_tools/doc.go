// Package event_tools exposes the event repository as MCP tools:
// event_list, event_get, event_create, event_update and event_delete.
//
// Fields are addressed by logical name (name, startDate, endDateTime, ...)
// or by dotted record path (description, attendees, reminders.useDefault).
// event_update and event_delete are only registered when the server is not
// read-only.
package event_tools
