package resources

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/teemow/gcalevents/internal/event"
	"github.com/teemow/gcalevents/internal/server"
)

const (
	FieldsURI   = "gcalevents://fields"
	SettingsURI = "gcalevents://settings"

	mimeJSON = "application/json"
)

// FieldInfo describes one logical field name.
type FieldInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Format   string `json:"format"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

// Settings describes the server configuration visible to clients.
type Settings struct {
	CalendarID string `json:"calendarId,omitempty"`
	ReadOnly   bool   `json:"readOnly"`
	DateLayout string `json:"dateLayout"`
	TimeLayout string `json:"dateTimeLayout"`
}

// RegisterEventResources registers the field table and settings resources.
func RegisterEventResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	fieldsResource := mcp.NewResource(
		FieldsURI,
		"Event Field Names",
		mcp.WithResourceDescription("Logical field names accepted by the event tools and the Calendar resource paths they map to"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(fieldsResource, handleFields)

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Server Settings",
		mcp.WithResourceDescription("Default calendar and write mode of this server"),
		mcp.WithMIMEType(mimeJSON),
	)
	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(ctx, request, sc)
	})

	return nil
}

func handleFields(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(request, Fields())
}

func handleSettings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	return jsonContents(request, Settings{
		CalendarID: sc.CalendarID(),
		ReadOnly:   sc.ReadOnly(),
		DateLayout: event.DateLayout,
		TimeLayout: event.DateTimeLayout,
	})
}

// Fields returns the logical field table sorted by name.
func Fields() []FieldInfo {
	fields := lo.MapToSlice(event.Aliases(), func(name, path string) FieldInfo {
		return FieldInfo{Name: name, Path: path, Format: formatOf(name)}
	})
	fields = append(fields, FieldInfo{Name: event.FieldSortDate, Format: "date or date-time", ReadOnly: true})
	slices.SortFunc(fields, func(a, b FieldInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return fields
}

func formatOf(name string) string {
	switch name {
	case event.FieldStartDate, event.FieldEndDate:
		return "date"
	case event.FieldStartDateTime, event.FieldEndDateTime:
		return "date-time"
	default:
		return "string"
	}
}

func jsonContents(request mcp.ReadResourceRequest, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", request.Params.URI, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
