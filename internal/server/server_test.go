package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/proformatools/proforma/pkg/constants"
	"go.uber.org/zap"
)

const scenarioYAML = `scenario:
  name: Maple Street Apartments
  timeline:
    predevelopmentMonths: 12
    constructionMonths: 18
    leaseUpMonths: 6
    operatingYears: 10
  cost:
    totalCost: 4500000
  revenue:
    annualGrossIncome: 500000
    annualOperatingExpenses: 75000
  assumptions:
    discountRate: 0.12
    capRate: 0.05
    vacancyRate: 0.05
`

func TestHandleAnalyzeYAML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(scenarioYAML))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Analysis == nil {
		t.Fatal("expected analysis in response")
	}
	if resp.Analysis.Scenario != "Maple Street Apartments" {
		t.Fatalf("unexpected scenario name %q", resp.Analysis.Scenario)
	}
	if len(resp.Analysis.CashFlows) != 12+18+6+10*12 {
		t.Fatalf("unexpected cash flow count %d", len(resp.Analysis.CashFlows))
	}
	if resp.Duration == "" {
		t.Fatal("expected duration in response")
	}
}

func TestHandleAnalyzeJSON(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	payload := `{
		"scenario": {
			"name": "JSON Scenario",
			"timeline": {"predevelopmentMonths": 6, "constructionMonths": 12, "leaseUpMonths": 3, "operatingYears": 5},
			"cost": {"totalCost": 2000000},
			"revenue": {"annualGrossIncome": 300000, "annualOperatingExpenses": 50000},
			"assumptions": {"discountRate": 0.10, "capRate": 0.06}
		}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Analysis == nil || resp.Analysis.Scenario != "JSON Scenario" {
		t.Fatalf("unexpected analysis: %+v", resp.Analysis)
	}
}

func TestHandleAnalyzeRejectsInvalidScenario(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	bad := strings.Replace(scenarioYAML, "discountRate: 0.12", "discountRate: 0.75", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(bad))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected error message in response")
	}
}

func TestHandleAnalyzeRejectsMalformedYAML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("scenario: [unclosed"))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleAnalyzeRejectsEmptyBody(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(""))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleAnalyzeEnforcesUploadLimit(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(scenarioYAML))
	req.Header.Set("Content-Type", "application/yaml")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", resp["version"])
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("expected ok status, got %s", rr.Body.String())
	}
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}
