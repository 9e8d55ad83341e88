package event_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/teemow/gcalevents/internal/event"
	"github.com/teemow/gcalevents/internal/server"
	"github.com/teemow/gcalevents/internal/tools/batch"
	"github.com/teemow/gcalevents/internal/tools/common"
)

// Tool names.
const (
	ToolList   = "event_list"
	ToolGet    = "event_get"
	ToolCreate = "event_create"
	ToolUpdate = "event_update"
	ToolDelete = "event_delete"
)

const fieldsDescription = "Map of field name to value. Logical names: name, startDate, endDate " +
	"(YYYY-MM-DD), startDateTime, endDateTime (RFC3339). Any other key is a dotted path on the " +
	"Calendar event resource, e.g. description, location, attendees, reminders.useDefault."

func calendarIDOption() mcp.ToolOption {
	return mcp.WithString("calendarId",
		mcp.Description("Calendar ID. Defaults to the configured calendar."),
	)
}

// RegisterEventTools registers the event tools with the MCP server.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.Repository() == nil {
		return fmt.Errorf("server context has no event repository")
	}

	listTool := mcp.NewTool(ToolList,
		mcp.WithDescription("List calendar events in a time window. Recurring events are expanded into single instances."),
		mcp.WithReadOnlyHintAnnotation(true),
		calendarIDOption(),
		mcp.WithString("timeMin",
			mcp.Description("Start of the window (RFC3339). Defaults to the start of today."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the window (RFC3339). Defaults to the end of the day one year from now."),
		),
		mcp.WithString("query",
			mcp.Description("Free text search on event fields"),
		),
		mcp.WithObject("params",
			mcp.Description("Additional Calendar API query parameters, e.g. {\"orderBy\": \"startTime\", \"maxResults\": 10}"),
		),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler(ToolList, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, request, sc)
	}))

	getTool := mcp.NewTool(ToolGet,
		mcp.WithDescription("Get one calendar event by ID"),
		mcp.WithReadOnlyHintAnnotation(true),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)
	s.AddTool(getTool, common.InstrumentedToolHandler(ToolGet, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGet(ctx, request, sc)
	}))

	createTool := mcp.NewTool(ToolCreate,
		mcp.WithDescription("Create a calendar event from field values"),
		calendarIDOption(),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description(fieldsDescription),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler(ToolCreate, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreate(ctx, request, sc)
	}))

	if sc.ReadOnly() {
		return nil
	}

	updateTool := mcp.NewTool(ToolUpdate,
		mcp.WithDescription("Update fields of an existing calendar event"),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description(fieldsDescription),
		),
	)
	s.AddTool(updateTool, common.InstrumentedToolHandler(ToolUpdate, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdate(ctx, request, sc)
	}))

	deleteTool := mcp.NewTool(ToolDelete,
		mcp.WithDescription("Delete one or more calendar events"),
		mcp.WithDestructiveHintAnnotation(true),
		calendarIDOption(),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description(`The ID of the event to delete. To delete several, pass a JSON array string such as ["id1","id2"]`),
		),
	)
	s.AddTool(deleteTool, common.InstrumentedToolHandler(ToolDelete, sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDelete(ctx, request, sc)
	}))

	return nil
}

func handleList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	opts := event.ListOptions{
		CalendarID: request.GetString("calendarId", ""),
		Params:     url.Values{},
	}

	var err error
	if opts.TimeMin, err = optionalTime(request, "timeMin"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.TimeMax, err = optionalTime(request, "timeMax"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if raw, ok := request.GetArguments()["params"]; ok && raw != nil {
		params, ok := raw.(map[string]any)
		if !ok {
			return mcp.NewToolResultError("params must be an object"), nil
		}
		for key, value := range params {
			opts.Params[key] = paramValues(value)
		}
	}
	if query := request.GetString("query", ""); query != "" {
		opts.Params.Set("q", query)
	}

	events, err := sc.Repository().Get(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d events:\n\n", len(events))
	for i, ev := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ev.Name())
		fmt.Fprintf(&b, "   ID: %s\n", ev.ID())
		fmt.Fprintf(&b, "   When: %s\n", ev.When())
		if location := ev.Record().Location; location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", location)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("eventId")
	if err != nil || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	ev, err := sc.Repository().Find(ctx, eventID, request.GetString("calendarId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}
	return eventResult(ev)
}

func handleCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fields, err := requireFields(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ev, err := sc.Repository().Create(ctx, fields, request.GetString("calendarId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}
	return eventResult(ev)
}

func handleUpdate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("eventId")
	if err != nil || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}
	fields, err := requireFields(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	repo := sc.Repository()
	ev, err := repo.Find(ctx, eventID, request.GetString("calendarId", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}
	for _, name := range sortedKeys(fields) {
		if err := ev.Set(name, fields[name]); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid value for %s: %v", name, err)), nil
		}
	}

	saved, err := repo.Save(ctx, ev)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}
	return eventResult(saved)
}

func handleDelete(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventIDs, err := batch.ParseIDs(request.GetArguments()["eventId"], "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	calendarID := request.GetString("calendarId", "")
	repo := sc.Repository()

	if len(eventIDs) == 1 {
		if err := repo.DeleteByID(ctx, eventIDs[0], calendarID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted", eventIDs[0])), nil
	}

	results := batch.Run(ctx, eventIDs, func(ctx context.Context, id string) (string, error) {
		if err := repo.DeleteByID(ctx, id, calendarID); err != nil {
			return "", err
		}
		return "deleted", nil
	})
	return mcp.NewToolResultText(batch.Format(results)), nil
}

func eventResult(ev *event.Event) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode event: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func optionalTime(request mcp.CallToolRequest, key string) (*time.Time, error) {
	raw := request.GetString(key, "")
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format: %v", key, err)
	}
	return &t, nil
}

func requireFields(request mcp.CallToolRequest) (map[string]any, error) {
	fields, ok := request.GetArguments()["fields"].(map[string]any)
	if !ok || len(fields) == 0 {
		return nil, fmt.Errorf("fields is required and must be a non-empty object")
	}
	return fields, nil
}

func paramValues(value any) []string {
	if list, ok := value.([]any); ok {
		values := make([]string, 0, len(list))
		for _, item := range list {
			values = append(values, fmt.Sprint(item))
		}
		return values
	}
	return []string{fmt.Sprint(value)}
}

func sortedKeys(fields map[string]any) []string {
	keys := lo.Keys(fields)
	slices.Sort(keys)
	return keys
}
