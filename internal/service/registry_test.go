package service

import (
	"context"
	"testing"

	"github.com/pbs-admin/backend/internal/shared/types"
)

type mockProvider struct {
	id string
}

func (m *mockProvider) Definition() types.Service {
	return types.Service{
		ID:           m.id,
		Name:         "Mock Service",
		Description:  "A mock service for testing",
		Category:     types.CategoryFiles,
		Capabilities: []string{"read", "write"},
		Tools: []types.Tool{
			{
				ID:          m.id + ".test",
				Name:        "Test Tool",
				Description: "A test tool",
				Returns:     "string",
			},
		},
	}
}

func (m *mockProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"result": "success"},
	}, nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockProvider{id: "mock"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("mock"); !ok {
		t.Fatal("registered provider not found")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockProvider{id: ""}); err == nil {
		t.Fatal("expected error for empty service ID")
	}
}

func TestExecuteRoutesByToolID(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "mock"})

	result, err := r.Execute(context.Background(), "mock.test", nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
}

func TestExecuteUnknownService(t *testing.T) {
	r := NewRegistry()

	result, err := r.Execute(context.Background(), "ghost.test", nil)
	if err == nil {
		t.Fatal("expected error for unknown service")
	}
	if result.Success {
		t.Fatal("expected failure result")
	}
}

func TestExecuteMalformedToolID(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "mock"})

	if _, err := r.Execute(context.Background(), "no-dot", nil); err == nil {
		t.Fatal("expected error for malformed tool ID")
	}
}

func TestListFiltersByCategory(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "mock"})

	all := r.List(nil)
	if len(all) != 1 {
		t.Fatalf("expected 1 service, got %d", len(all))
	}

	backup := types.CategoryBackup
	filtered := r.List(&backup)
	if len(filtered) != 0 {
		t.Fatalf("expected 0 backup services, got %d", len(filtered))
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{id: "a"})
	r.Register(&mockProvider{id: "b"})

	stats := r.Stats()
	if stats["total_services"] != 2 {
		t.Fatalf("expected 2 services, got %v", stats["total_services"])
	}
	if stats["total_tools"] != 2 {
		t.Fatalf("expected 2 tools, got %v", stats["total_tools"])
	}
}
