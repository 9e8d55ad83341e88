// Package event maps logical event fields onto Google Calendar event records
// and provides a repository for listing, finding, saving and deleting them.
//
// Field names are translated through a small alias table before they touch
// the record: name becomes summary, startDate becomes start.date,
// endDateTime becomes end.dateTime, and so on. Any other name is used as a
// dotted path on the record as is. Values written to paths the record type
// has no field for are kept on the Event as extra fields; Repository.Save
// refuses to send an event that still carries any.
//
// Example usage:
//
//	repo := event.NewRepository(factory, logger)
//
//	ev := event.New("")
//	_ = ev.Set("name", "Standup")
//	_ = ev.Set("startDateTime", start)
//	_ = ev.Set("endDateTime", start.Add(15*time.Minute))
//
//	saved, err := repo.Save(ctx, ev)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(saved.ID(), saved.IsAllDayEvent())
package event
