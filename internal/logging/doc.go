// Package logging assembles the structured slog loggers used across
// timeturner's services.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and provides the in-memory stream hub that backs the HTTP
// API's log endpoint. Prefer these constructors over hand-rolled slog setup
// so every component emits data with the same shape and routing.
package logging
