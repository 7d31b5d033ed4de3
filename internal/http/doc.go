// Package http provides HTTP handlers for the backend API.
//
// The generic surface exposes the service registry: list tool
// definitions and execute any registered tool by its ID. Backup
// operations additionally get dedicated REST routes so the frontend
// can drive the settings screen without building tool envelopes.
//
// Tool failures are reported two ways. Domain failures (a rejected
// path, a missing backup) come back as HTTP 200 with a Result whose
// Success is false and whose Code names the failure. Transport-level
// problems (malformed JSON, unknown tool) use the HTTP status code.
// The REST backup routes translate domain codes into HTTP statuses
// instead, since they carry no Result envelope.
package http
