package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seaboard-labs/rosterd/internal/config"
	"github.com/seaboard-labs/rosterd/internal/registry"
	"github.com/seaboard-labs/rosterd/internal/roster"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    time.Minute,
			RequestTimeout: time.Minute,
		},
		Import: config.ImportConfig{
			MaxBodySize: 1 << 20,
			DefaultRole: "FACILITATOR",
			Timeout:     time.Minute,
		},
	}
}

// newTestServer wires a real importer over the in-memory registry.
func newTestServer(t *testing.T, cfg *config.Config) (*Server, *registry.Memory) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	mem := registry.NewMemory()
	importer := roster.NewImporter(mem, nil, mem)
	return NewServer(importer, mem, nil, cfg), mem
}

func TestImportEndpoint(t *testing.T) {
	srv, mem := newTestServer(t, nil)

	doc := "Full Legal Name,Email Address,Team Type\n" +
		"jane doe,jane@x.com,Contractor\n" +
		"sam lee,sam@x.com,Full Time\n"

	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader(doc))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result roster.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Created != 2 {
		t.Errorf("result = %+v", result)
	}
	if mem.Count() != 2 {
		t.Errorf("registry holds %d people, want 2", mem.Count())
	}

	people := mem.All()
	if people[0].Name != "Jane Doe" || people[0].Role != roster.RoleContractor {
		t.Errorf("first person = %+v", people[0])
	}
	if people[1].Role != "FACILITATOR" {
		t.Errorf("second person role = %q, want config default", people[1].Role)
	}
}

func TestImportDefaultRoleOverride(t *testing.T) {
	srv, mem := newTestServer(t, nil)

	doc := "Full Legal Name,Email\njane doe,jane@x.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/roster/import?default_role=MENTOR", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if people := mem.All(); people[0].Role != "MENTOR" {
		t.Errorf("role = %q, want MENTOR", people[0].Role)
	}
}

func TestImportMultipart(t *testing.T) {
	srv, mem := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.csv")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(part, "Full Legal Name,Email\njane doe,jane@x.com\n")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if mem.Count() != 1 {
		t.Errorf("registry holds %d people, want 1", mem.Count())
	}
}

func TestImportEmptyBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader("  "))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportHeaderOnlyDocument(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader("Full Legal Name,Email\n"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	var result roster.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Success || len(result.Errors) != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	srv, mem := newTestServer(t, nil)

	doc := "Name,Email\njane doe,jane@x.com\nsam lee,sam@x.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/roster/preview", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var preview roster.PreviewResult
	if err := json.NewDecoder(rec.Body).Decode(&preview); err != nil {
		t.Fatal(err)
	}
	if preview.RowCount != 2 || len(preview.Headers) != 2 {
		t.Errorf("preview = %+v", preview)
	}
	if mem.Count() != 0 {
		t.Error("preview must not write to the registry")
	}
}

func TestListRunsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	doc := "Full Legal Name,Email\njane doe,jane@x.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader(doc))
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/roster/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Runs []roster.ImportRun `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Runs) != 1 || payload.Runs[0].Created != 1 {
		t.Errorf("runs = %+v", payload.Runs)
	}
}

func TestListRunsNotConfigured(t *testing.T) {
	cfg := testConfig()
	mem := registry.NewMemory()
	srv := NewServer(roster.NewImporter(mem, nil, nil), nil, nil, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/roster/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestImportRejectedWhenBusy(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxConcurrent = 1
	cfg.Import.MaxSlotWait = 50 * time.Millisecond
	srv, _ := newTestServer(t, cfg)

	// Occupy the only slot so the request has to wait it out.
	if err := srv.limiter.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer srv.limiter.Release()

	doc := "Full Legal Name,Email\njane doe,jane@x.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{
		RequireAPIKey: true,
		APIKeys:       []string{"secret-key"},
	}
	srv, _ := newTestServer(t, cfg)

	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "not-it", http.StatusForbidden},
		{"valid key", "secret-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "Full Legal Name,Email\njane doe,jane@x.com\n"
			req := httptest.NewRequest(http.MethodPost, "/api/roster/import", strings.NewReader(doc))
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	// The health probe stays open.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}
