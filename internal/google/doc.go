// Package google provides credentials for the Google Calendar API.
//
// Two credential sources are supported:
//   - a service-account key file, shared with the target calendar
//   - a stored OAuth2 user token, obtained once through the installed-app flow
//
// ClientOptions turns either source into google.golang.org/api client options.
package google
