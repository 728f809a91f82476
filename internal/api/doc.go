// Package api defines the transport-facing payloads shared by the daemon's
// HTTP server and the CLI client, plus the converters that build them from
// engine state. Keeping the shapes here means the daemon and the CLI cannot
// drift apart on field names.
package api
