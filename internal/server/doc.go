// Package server wires configuration, logging, the path gatekeeper,
// the backup manager, and the service providers into a running HTTP
// server for the desktop frontend.
package server
