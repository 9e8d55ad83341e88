// Package resources provides read-only MCP resources that describe how the
// event tools interpret their input: the logical field table and the server
// settings in effect.
package resources
