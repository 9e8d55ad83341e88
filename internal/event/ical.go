package event

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// ProductID identifies exported calendars.
const ProductID = "-//teemow//gcalevents//EN"

// ToICal converts events to a VCALENDAR with one VEVENT each. stamp is used
// for DTSTAMP.
func ToICal(events []*Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, ev := range events {
		cal.Children = append(cal.Children, toVEvent(ev, stamp))
	}
	return cal
}

// WriteICal encodes events as an iCalendar document to w.
func WriteICal(w io.Writer, events []*Event, stamp time.Time) error {
	if err := ical.NewEncoder(w).Encode(ToICal(events, stamp)); err != nil {
		return fmt.Errorf("failed to encode events to iCal format: %w", err)
	}
	return nil
}

func toVEvent(ev *Event, stamp time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)

	uid := ev.Record().ICalUID
	if uid == "" {
		uid = ev.ID()
	}
	if uid == "" {
		uid = uuid.NewString()
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())

	if ev.IsAllDayEvent() {
		setDate(ve, ical.PropDateTimeStart, ev.StartDate)
		setDate(ve, ical.PropDateTimeEnd, ev.EndDate)
	} else {
		if t, ok := ev.StartDateTime(); ok {
			ve.Props.SetDateTime(ical.PropDateTimeStart, t)
		}
		if t, ok := ev.EndDateTime(); ok {
			ve.Props.SetDateTime(ical.PropDateTimeEnd, t)
		}
	}

	record := ev.Record()
	if record.Summary != "" {
		ve.Props.SetText(ical.PropSummary, record.Summary)
	}
	if record.Description != "" {
		ve.Props.SetText(ical.PropDescription, record.Description)
	}
	if record.Location != "" {
		ve.Props.SetText(ical.PropLocation, record.Location)
	}
	if record.Status != "" {
		ve.Props.SetText(ical.PropStatus, strings.ToUpper(record.Status))
	}
	if record.Organizer != nil && record.Organizer.Email != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", record.Organizer.Email))
		ve.Props.Add(p)
	}
	for _, attendee := range record.Attendees {
		if attendee == nil || attendee.Email == "" {
			continue
		}
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", attendee.Email))
		ve.Props.Add(p)
	}
	return ve
}

func setDate(ve *ical.Component, name string, get func() (time.Time, bool)) {
	t, ok := get()
	if !ok {
		return
	}
	p := ical.NewProp(name)
	p.SetDate(t)
	ve.Props.Set(p)
}
