// Package cmd implements the command-line interface for gcalevents.
//
// This package provides the following commands:
//   - events: list, get, create, update and delete calendar events
//   - auth: obtain and store an OAuth user token
//   - serve: start the MCP server over stdio
//   - version: display version information
//   - generate-docs: generate markdown documentation for the MCP tools
package cmd
