// Package types provides the shared data structures of the backend.
//
// Core Types:
//   - Service: service provider definition exposed to the frontend
//   - Tool: named operation with typed parameters
//   - Result: standard operation result (success, data, error, code)
//
// Request Types:
//   - ExecuteRequest: tool execution from the frontend
package types
