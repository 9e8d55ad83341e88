package event

import (
	"maps"
	"strings"
)

// Logical field names.
const (
	FieldName          = "name"
	FieldStartDate     = "startDate"
	FieldEndDate       = "endDate"
	FieldStartDateTime = "startDateTime"
	FieldEndDateTime   = "endDateTime"
	FieldSortDate      = "sortDate"
)

// Record paths the logical names resolve to.
const (
	PathSummary       = "summary"
	PathStartDate     = "start.date"
	PathEndDate       = "end.date"
	PathStartDateTime = "start.dateTime"
	PathEndDateTime   = "end.dateTime"
)

var aliases = map[string]string{
	FieldName:          PathSummary,
	FieldStartDate:     PathStartDate,
	FieldEndDate:       PathEndDate,
	FieldStartDateTime: PathStartDateTime,
	FieldEndDateTime:   PathEndDateTime,
}

// TranslateFieldName returns the record path for a logical field name.
// Names outside the alias table are returned unchanged.
func TranslateFieldName(name string) string {
	if path, ok := aliases[name]; ok {
		return path
	}
	return name
}

// Aliases returns a copy of the logical name to record path table.
func Aliases() map[string]string {
	return maps.Clone(aliases)
}

func isDatePath(path string) bool {
	switch path {
	case PathStartDate, PathEndDate, PathStartDateTime, PathEndDateTime:
		return true
	}
	return false
}

func isDateOnlyPath(path string) bool {
	return path == PathStartDate || path == PathEndDate
}

func isStartPath(path string) bool {
	return strings.HasPrefix(path, "start.")
}
