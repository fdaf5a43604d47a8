package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/brief/internal/api"
	"github.com/JaimeStill/brief/internal/config"
	"github.com/JaimeStill/brief/internal/infrastructure"
	"github.com/JaimeStill/brief/internal/pipeline"
	"github.com/JaimeStill/brief/internal/summarize"
	"github.com/JaimeStill/brief/pkg/database"
	"github.com/JaimeStill/brief/pkg/middleware"
	"github.com/JaimeStill/brief/pkg/module"
	"github.com/JaimeStill/brief/pkg/pagination"
	"github.com/JaimeStill/brief/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=briefstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/briefstore;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "brief",
			User:            "brief",
			Password:        "brief",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
			ConnRetries:     3,
		},
		Storage: storage.Config{
			ContainerName:    "documents",
			ConnectionString: azuriteConnString,
			MaxListSize:      50,
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Pipeline: config.PipelineConfig{
			ExtractWorkers: 2,
			RequestTimeout: "30s",
			Summarize: summarize.Config{
				EnglishURL: "http://localhost:9000/english",
				ArabicURL:  "http://localhost:9000/arabic",
				Token:      "token",
			},
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func setupModule(t *testing.T) *module.Module {
	t.Helper()
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

func serve(m *module.Module, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	m.Serve(rec, req)
	return rec
}

func TestNewModule(t *testing.T) {
	m := setupModule(t)

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.MaxListSize != 50 {
		t.Errorf("max list size: got %d, want 50", runtime.MaxListSize)
	}
	if runtime.BasePath != "/api" {
		t.Errorf("base path: got %s, want /api", runtime.BasePath)
	}
	if runtime.MaxUploadSize != cfg.API.MaxUploadSizeBytes() {
		t.Errorf("max upload size: got %d, want %d", runtime.MaxUploadSize, cfg.API.MaxUploadSizeBytes())
	}
	if runtime.Logger == nil || runtime.Logger == infra.Logger {
		t.Error("runtime logger should be scoped to the module")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Engine == nil {
		t.Error("runtime engine is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain := api.NewDomain(runtime)
	if domain == nil {
		t.Fatal("NewDomain() returned nil")
	}
	if domain.Runs == nil {
		t.Error("runs system is nil")
	}
	if domain.Sessions == nil {
		t.Error("sessions system is nil")
	}
}

func TestValidateGraph(t *testing.T) {
	m := setupModule(t)

	tests := []struct {
		name     string
		body     string
		status   int
		runnable bool
		order    []string
	}{
		{
			name: "runnable",
			body: `{
				"nodes": [
					{"id": "a", "kind": "open-document"},
					{"id": "b", "kind": "extract-text"},
					{"id": "c", "kind": "summarize"}
				],
				"edges": [
					{"id": "e1", "source": "a", "target": "b"},
					{"id": "e2", "source": "b", "target": "c"}
				]
			}`,
			status:   http.StatusOK,
			runnable: true,
			order:    []string{"a", "b", "c"},
		},
		{
			name: "missing stages",
			body: `{
				"nodes": [{"id": "a", "kind": "open-document"}],
				"edges": []
			}`,
			status: http.StatusOK,
			order:  []string{"a"},
		},
		{
			name:   "malformed json",
			body:   `{"nodes": [`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(m, http.MethodPost, "/api/graphs/validate", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}

			var report pipeline.Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("decode report: %v", err)
			}
			if report.Runnable != tt.runnable {
				t.Errorf("runnable: got %v, want %v", report.Runnable, tt.runnable)
			}
			if strings.Join(report.Order, ",") != strings.Join(tt.order, ",") {
				t.Errorf("order: got %v, want %v", report.Order, tt.order)
			}
			if !tt.runnable && report.Error == "" {
				t.Error("expected error in report")
			}
		})
	}
}

func TestDocumentsConfinedToSessions(t *testing.T) {
	m := setupModule(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"find outside prefix", "/api/documents/other/key.pdf", http.StatusNotFound},
		{"download outside prefix", "/api/documents/download/other/key.pdf", http.StatusNotFound},
		{"invalid session filter", "/api/documents?session=nope", http.StatusBadRequest},
		{"invalid max results", "/api/documents?max_results=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(m, http.MethodGet, tt.path, "")
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestSessionsMounted(t *testing.T) {
	m := setupModule(t)

	rec := serve(m, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: got %d, want 201", rec.Code)
	}

	rec = serve(m, http.MethodGet, "/api/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions: got %d, want 200", rec.Code)
	}

	var infos []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("sessions: got %d, want 1", len(infos))
	}
}
