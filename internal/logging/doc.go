// Package logging holds the slog attribute helpers shared by gcalevents.
//
// Calendar and event identifiers are always logged under the same keys so
// a single calendar's traffic can be filtered out of mixed output:
//
//	logger := logging.WithCalendar(slog.Default(), calendarID)
//	logger.Debug("event saved", logging.EventID(id), logging.Status(logging.StatusSuccess))
//
// Credentials go through SanitizeToken before they reach any log line.
package logging
