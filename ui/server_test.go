package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"netpath/adapters/stats/directed"
	"netpath/adapters/stats/enrich"
	"netpath/adapters/stats/glasso"
	"netpath/adapters/stats/tuning"
	"netpath/app"
	"netpath/domain/pathway"
	"netpath/internal/testkit"
	"netpath/models"
)

func newTestApp(t *testing.T) (*App, *testkit.InMemoryAnalysisStore) {
	t.Helper()
	store := testkit.NewInMemoryAnalysisStore()
	service := app.NewAnalysisService(
		tuning.NewSelector(glasso.New()),
		directed.New(),
		enrich.NewTester(),
		store,
		nil,
	)
	return NewApp(service, store, nil), store
}

func TestAnalysisRoundTrip(t *testing.T) {
	a, _ := newTestApp(t)
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	rng, err := testkit.NewRNGAdapter().SeededStream(context.Background(), "server", 107)
	if err != nil {
		t.Fatalf("seeding stream: %v", err)
	}
	m, labels, err := testkit.TwoConditionDataset(rng, testkit.ChainPrecision(3, -0.3), 40, 0, nil)
	if err != nil {
		t.Fatalf("building dataset: %v", err)
	}
	for i := range m.Data {
		for s := range m.Data[i] {
			m.Data[i][s] += rng.NormFloat64()
		}
	}

	payload := map[string]interface{}{
		"expression": m,
		"labels":     labels,
		"indicator": &pathway.IndicatorMatrix{
			Pathways: []string{"all"},
			Genes:    m.Genes,
			Rows:     [][]int{{1, 1, 1}},
		},
		"lambdas": []float64{0.1, 0.3},
		"eps":     1e-6,
		"method":  "likelihood",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}

	resp, err := http.Post(server.URL+"/api/analyses", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}
	var record models.AnalysisRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if record.ID == "" {
		t.Fatal("record has no id")
	}

	// The record must be retrievable.
	getResp, err := http.Get(server.URL + "/api/analyses/" + record.ID.String())
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", getResp.StatusCode)
	}

	// And its report renders as HTML.
	repResp, err := http.Get(server.URL + "/api/analyses/" + record.ID.String() + "/report")
	if err != nil {
		t.Fatalf("GET report failed: %v", err)
	}
	defer repResp.Body.Close()
	if repResp.StatusCode != http.StatusOK {
		t.Fatalf("want 200 for report, got %d", repResp.StatusCode)
	}
	if ct := repResp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected report content type %q", ct)
	}
}

func TestCreateAnalysisRejectsBadRequests(t *testing.T) {
	a, _ := newTestApp(t)
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/analyses", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("want 400 for malformed JSON, got %d", resp.StatusCode)
	}

	resp, err = http.Post(server.URL+"/api/analyses", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("want 422 for empty analysis, got %d", resp.StatusCode)
	}
}

func TestGetAnalysisUnknownID(t *testing.T) {
	a, _ := newTestApp(t)
	server := httptest.NewServer(a.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/analyses/not-a-uuid")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("want 400 for malformed id, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/analyses/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("want 404 for unknown id, got %d", resp.StatusCode)
	}
}
