// Package calendar provides the gateway between event mappers and the
// Google Calendar v3 API.
//
// A Factory owns one *calendar.Service and hands out Clients, each bound to a
// single calendar id. Every Client method is a direct pass-through to the
// corresponding Events call, wrapped with a span and a metric. Failures are
// returned as *RemoteError values wrapping the API error unchanged.
//
// Example usage:
//
//	opts, err := google.ClientOptions(ctx, creds, logger)
//	if err != nil {
//	    return err
//	}
//	factory, err := calendar.NewFactory(ctx, "team@example.com", opts)
//	if err != nil {
//	    return err
//	}
//
//	gw, err := factory.ForCalendar("") // configured default
//	if err != nil {
//	    return err
//	}
//	events, err := gw.ListEvents(ctx, nil, nil, nil)
package calendar
