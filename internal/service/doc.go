// Package service provides the registry that maps tool IDs to providers.
//
// The frontend invokes every backend operation by tool ID through this
// registry. A tool ID is "<service>.<tool>"; the registry routes to the
// provider registered under <service>.
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(backupProvider)
//	result, err := registry.Execute(ctx, "backup.create", params)
package service
