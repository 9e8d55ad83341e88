package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/teemow/gcalevents/internal/event"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputICS  = "ics"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage calendar events",
		Long: `List, get, create, update and delete events on a Google Calendar.

Fields are set with --set field=value. Logical names are translated:
  name           -> summary
  startDate      -> start.date       (YYYY-MM-DD)
  endDate        -> end.date         (YYYY-MM-DD)
  startDateTime  -> start.dateTime   (RFC3339)
  endDateTime    -> end.dateTime     (RFC3339)
Any other field is a dotted path on the Calendar event resource. Use
field:=json to pass a JSON value, e.g. --set 'attendees:=[{"email":"a@example.com"}]'.`,
	}

	cmd.AddCommand(newEventsListCmd(a))
	cmd.AddCommand(newEventsGetCmd(a))
	cmd.AddCommand(newEventsCreateCmd(a))
	cmd.AddCommand(newEventsUpdateCmd(a))
	cmd.AddCommand(newEventsDeleteCmd(a))
	return cmd
}

func newEventsListCmd(a *app) *cobra.Command {
	var (
		from, to, query, output string
		params                  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events in a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := event.ListOptions{CalendarID: a.cfg.CalendarID}

			var err error
			if opts.TimeMin, err = parseTimeFlag("from", from); err != nil {
				return err
			}
			if opts.TimeMax, err = parseTimeFlag("to", to); err != nil {
				return err
			}
			if opts.Params, err = parseParams(params); err != nil {
				return err
			}
			if query != "" {
				opts.Params.Set("q", query)
			}

			repo, err := a.repository(cmd.Context(), nil)
			if err != nil {
				return err
			}
			events, err := repo.Get(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}
			return writeEvents(cmd.OutOrStdout(), output, events)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start of the window, RFC3339 or YYYY-MM-DD (default: start of today)")
	cmd.Flags().StringVar(&to, "to", "", "End of the window, RFC3339 or YYYY-MM-DD (default: one year from today)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free text search")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Calendar API query parameter key=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or ics")
	return cmd
}

func newEventsGetCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context(), nil)
			if err != nil {
				return err
			}
			ev, err := repo.Find(cmd.Context(), args[0], a.cfg.CalendarID)
			if err != nil {
				return fmt.Errorf("failed to get event: %w", err)
			}
			return writeEvents(cmd.OutOrStdout(), output, []*event.Event{ev})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format: text, json or ics")
	return cmd
}

func newEventsCreateCmd(a *app) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "create --set field=value...",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseSets(sets)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return fmt.Errorf("at least one --set is required")
			}

			repo, err := a.repository(cmd.Context(), nil)
			if err != nil {
				return err
			}
			ev, err := repo.Create(cmd.Context(), fields, a.cfg.CalendarID)
			if err != nil {
				return fmt.Errorf("failed to create event: %w", err)
			}
			a.logger.Info("event created", "id", ev.ID())
			return writeEvents(cmd.OutOrStdout(), outputJSON, []*event.Event{ev})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment field=value or field:=json (repeatable)")
	return cmd
}

func newEventsUpdateCmd(a *app) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update EVENT_ID --set field=value...",
		Short: "Update fields of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseSets(sets)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return fmt.Errorf("at least one --set is required")
			}

			repo, err := a.repository(cmd.Context(), nil)
			if err != nil {
				return err
			}
			ev, err := repo.Find(cmd.Context(), args[0], a.cfg.CalendarID)
			if err != nil {
				return fmt.Errorf("failed to get event: %w", err)
			}
			for _, name := range sortedFieldNames(fields) {
				if err := ev.Set(name, fields[name]); err != nil {
					return fmt.Errorf("invalid value for %s: %w", name, err)
				}
			}

			saved, err := repo.Save(cmd.Context(), ev)
			if err != nil {
				return fmt.Errorf("failed to update event: %w", err)
			}
			a.logger.Info("event updated", "id", saved.ID())
			return writeEvents(cmd.OutOrStdout(), outputJSON, []*event.Event{saved})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment field=value or field:=json (repeatable)")
	return cmd
}

func newEventsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := repo.DeleteByID(cmd.Context(), args[0], a.cfg.CalendarID); err != nil {
				return fmt.Errorf("failed to delete event: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event %s deleted\n", args[0])
			return nil
		},
	}
}

func writeEvents(w io.Writer, format string, events []*event.Event) error {
	switch format {
	case outputText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tWHEN")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ev.ID(), ev.Name(), ev.When())
		}
		return tw.Flush()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(events) == 1 {
			return enc.Encode(events[0])
		}
		return enc.Encode(events)
	case outputICS:
		return event.WriteICal(w, events, time.Now())
	default:
		return fmt.Errorf("unsupported output format %q: must be text, json or ics", format)
	}
}

// parseTimeFlag accepts RFC3339 or a local date.
func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(event.DateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: use RFC3339 or YYYY-MM-DD", name, value)
	}
	return &t, nil
}

func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		params.Add(key, value)
	}
	return params, nil
}

// parseSets turns field=value and field:=json assignments into field values.
func parseSets(sets []string) (map[string]any, error) {
	fields := make(map[string]any, len(sets))
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || key == "" || key == ":" {
			return nil, fmt.Errorf("invalid --set %q: expected field=value", set)
		}
		if name, isJSON := strings.CutSuffix(key, ":"); isJSON {
			var decoded any
			if err := json.Unmarshal([]byte(value), &decoded); err != nil {
				return nil, fmt.Errorf("invalid JSON for --set %s: %w", name, err)
			}
			fields[name] = decoded
			continue
		}
		fields[key] = value
	}
	return fields, nil
}

func sortedFieldNames(fields map[string]any) []string {
	names := lo.Keys(fields)
	slices.Sort(names)
	return names
}
