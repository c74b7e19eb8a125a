package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/numtracker/internal/contract"
	"github.com/example/numtracker/internal/core/instrument"
	"github.com/example/numtracker/internal/ports/primary"
	"github.com/example/numtracker/internal/transport/httpapi"
)

type fakeConfigs struct{}

func (fakeConfigs) Configurations(ctx context.Context, filter []string) ([]instrument.Instrument, error) {
	return nil, nil
}
func (fakeConfigs) Configuration(ctx context.Context, name string) (instrument.Instrument, error) {
	return instrument.Instrument{Name: name}, nil
}
func (fakeConfigs) Configure(ctx context.Context, inst instrument.Instrument, setNumber *int64) error {
	return nil
}

type fakeAllocator struct{}

func (fakeAllocator) Allocate(ctx context.Context, instrumentName, visit, subdirectory string, detectors []string) (primary.ScanResult, error) {
	return primary.ScanResult{Instrument: instrumentName, ScanNumber: 1}, nil
}
func (fakeAllocator) VisitDirectory(ctx context.Context, instrumentName, visit string) (string, error) {
	return "/data/" + instrumentName, nil
}

func TestSchemaEndpoint(t *testing.T) {
	svc := contract.NewService(fakeAllocator{}, fakeConfigs{}, nil, "type Query {}")
	h := httpapi.NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if rec.Body.String() != "type Query {}" {
		t.Fatalf("got body %q", rec.Body.String())
	}
}

func TestConfigureEndpointRequiresPayload(t *testing.T) {
	svc := contract.NewService(fakeAllocator{}, fakeConfigs{}, nil, "")
	h := httpapi.NewHandler(svc)

	body, _ := json.Marshal(map[string]string{"operation": "configure"})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	svc := contract.NewService(fakeAllocator{}, fakeConfigs{}, nil, "")
	h := httpapi.NewHandler(svc)

	body, _ := json.Marshal(map[string]any{"operation": "scan", "instrument": "i22", "visit": "cm12345-6"})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}

	var result primary.ScanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ScanNumber != 1 {
		t.Fatalf("got %+v", result)
	}
}

func TestUnknownOperation(t *testing.T) {
	svc := contract.NewService(fakeAllocator{}, fakeConfigs{}, nil, "")
	h := httpapi.NewHandler(svc)

	body, _ := json.Marshal(map[string]string{"operation": "nonsense"})
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d", rec.Code)
	}
}
