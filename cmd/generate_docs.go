package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcalevents/internal/calendar"
	"github.com/teemow/gcalevents/internal/event"
	"github.com/teemow/gcalevents/internal/server"
	"github.com/teemow/gcalevents/internal/tools/event_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		// Documentation needs no config or credentials.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(stdout, stderr io.Writer, outputFile string) error {
	// The tools are only introspected, so the service never makes a request.
	factory := calendar.NewFactoryForService(&gcal.Service{}, "primary")
	serverContext := server.NewServerContext(context.Background(), event.NewRepository(factory, nil))
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("gcalevents", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := event_tools.RegisterEventTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	serverTools := mcpSrv.ListTools()

	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(stderr, "Documentation written to: %s\n", outputFile)
		return nil
	}
	_, err := io.WriteString(stdout, markdown)
	return err
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gcalevents as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	sb.WriteString("## Table of Contents\n\n")
	categories := lo.Keys(toolsByCategory)
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Field Names\n\n")
	sb.WriteString("Tools that take `fields` accept these logical names in addition to dotted Calendar resource paths:\n\n")
	sb.WriteString("- `name`: the event summary\n")
	sb.WriteString("- `startDate`, `endDate`: all-day boundaries as `YYYY-MM-DD`\n")
	sb.WriteString("- `startDateTime`, `endDateTime`: timed boundaries as RFC3339\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		slices.SortFunc(categoryTools, func(a, b mcp.Tool) int {
			return strings.Compare(a.Name, b.Name)
		})

		fmt.Fprintf(&sb, "## %s\n\n", category)

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	return lo.GroupBy(tools, func(tool mcp.Tool) string {
		return getCategoryFromToolName(tool.Name)
	})
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "event":
		return "Event Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}
	if hints := toolHints(tool); len(hints) > 0 {
		fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(hints, ", "))
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	names := lo.Keys(props)
	sort.Strings(names)
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		requirement := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			requirement = "required"
		}
		propType := getPropertyType(prop)
		desc, ok := prop["description"].(string)
		if !ok {
			desc = propType + " parameter"
		}
		fmt.Fprintf(&sb, "- `%s` (%s, %s): %s\n", name, propType, requirement, desc)
	}
	sb.WriteString("\n")

	return sb.String()
}

// toolHints lists the behavior annotations a client sees for tool.
func toolHints(tool mcp.Tool) []string {
	if hint := tool.Annotations.ReadOnlyHint; hint != nil && *hint {
		return []string{"read-only"}
	}
	if hint := tool.Annotations.DestructiveHint; hint != nil && *hint {
		return []string{"destructive"}
	}
	return nil
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
