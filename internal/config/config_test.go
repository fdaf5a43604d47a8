package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/brief/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "brief"
user = "brief"
password = "brief"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "documents"
connection_string = "DefaultEndpointsProtocol=http;AccountName=briefstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/briefstore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[pipeline]
extract_workers = 8
request_timeout = "30s"

[pipeline.summarize]
english_url = "http://localhost:9000/english"
arabic_url = "http://localhost:9000/arabic"
token = "hf-token"

[pipeline.dispatch]
url = "http://localhost:9100/send"
rate_per_minute = 30

[telemetry]
enabled = true
endpoint = "http://localhost:4318"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline.dispatch]
recipient_param = "recipient"
`

// minimalConfig provides the minimum fields required for validation to pass
// (db name, db user, storage connection string, summarize token).
const minimalConfig = `
[database]
name = "brief"
user = "brief"

[storage]
connection_string = "conn"

[pipeline.summarize]
token = "hf-token"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func load(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Pipeline.ExtractWorkers != 8 {
		t.Errorf("extract_workers: got %d, want 8", cfg.Pipeline.ExtractWorkers)
	}
	if d := cfg.Pipeline.RequestTimeoutDuration(); d != 30*time.Second {
		t.Errorf("request_timeout: got %v, want 30s", d)
	}
	if cfg.Pipeline.Summarize.EnglishURL != "http://localhost:9000/english" {
		t.Errorf("english_url: got %s", cfg.Pipeline.Summarize.EnglishURL)
	}
	if !cfg.Pipeline.Dispatch.Enabled() {
		t.Error("dispatch should be enabled when url is set")
	}
	if cfg.Pipeline.Dispatch.RatePerMinute != 30 {
		t.Errorf("rate_per_minute: got %d, want 30", cfg.Pipeline.Dispatch.RatePerMinute)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("telemetry should be enabled")
	}
	if cfg.Telemetry.ServiceName != "brief" {
		t.Errorf("telemetry service_name: got %s, want brief", cfg.Telemetry.ServiceName)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("BRIEF_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Pipeline.Dispatch.RecipientParam != "recipient" {
		t.Errorf("recipient_param: got %s, want recipient (from overlay)", cfg.Pipeline.Dispatch.RecipientParam)
	}
	if cfg.Pipeline.Dispatch.URL != "http://localhost:9100/send" {
		t.Errorf("dispatch url: got %s (from base)", cfg.Pipeline.Dispatch.URL)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("BRIEF_VERSION", "2.0.0")
	t.Setenv("BRIEF_SERVER_PORT", "3000")
	t.Setenv("BRIEF_PIPELINE_EXTRACT_WORKERS", "2")
	t.Setenv("BRIEF_SUMMARIZE_TOKEN", "env-token")
	t.Setenv("BRIEF_DISPATCH_URL", "http://relay:8080/send")
	t.Setenv("BRIEF_TELEMETRY_ENABLED", "false")
	t.Setenv("BRIEF_STORAGE_MAX_LIST_SIZE", "200")

	cfg := load(t, baseConfig)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Pipeline.ExtractWorkers != 2 {
		t.Errorf("extract_workers: got %d, want 2", cfg.Pipeline.ExtractWorkers)
	}
	if cfg.Pipeline.Summarize.Token != "env-token" {
		t.Errorf("summarize token: got %s, want env-token", cfg.Pipeline.Summarize.Token)
	}
	if cfg.Pipeline.Dispatch.URL != "http://relay:8080/send" {
		t.Errorf("dispatch url: got %s", cfg.Pipeline.Dispatch.URL)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by env")
	}
	if cfg.Storage.MaxListSize != 200 {
		t.Errorf("storage max_list_size: got %d, want 200", cfg.Storage.MaxListSize)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("BRIEF_DB_NAME", "testdb")
	t.Setenv("BRIEF_DB_USER", "testuser")
	t.Setenv("BRIEF_STORAGE_CONNECTION_STRING", "conn")
	t.Setenv("BRIEF_SUMMARIZE_TOKEN", "token")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	t.Setenv("BRIEF_ENV", "production")
	cfg := load(t, baseConfig)

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := load(t, baseConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := load(t, baseConfig)

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestDefaults(t *testing.T) {
	cfg := load(t, minimalConfig)

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Pipeline.ExtractWorkers != 4 {
		t.Errorf("extract_workers default: got %d, want 4", cfg.Pipeline.ExtractWorkers)
	}
	if cfg.Pipeline.Dispatch.Enabled() {
		t.Error("dispatch should be disabled without a url")
	}
	if cfg.Pipeline.Summarize.EnglishModel != "facebook/bart-large-cnn" {
		t.Errorf("english_model default: got %s", cfg.Pipeline.Summarize.EnglishModel)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should be disabled by default")
	}
	if cfg.Storage.MaxListSize != 50 {
		t.Errorf("storage max_list_size default: got %d, want 50", cfg.Storage.MaxListSize)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	t.Setenv("BRIEF_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("BRIEF_PAGINATION_MAX_PAGE_SIZE", "200")

	cfg := load(t, baseConfig)

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxUploadSizeEnvOverride(t *testing.T) {
	t.Setenv("BRIEF_API_MAX_UPLOAD_SIZE", "100MB")
	cfg := load(t, baseConfig)

	want := int64(100 * 1024 * 1024)
	if got := cfg.API.MaxUploadSizeBytes(); got != want {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, want)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  minimalConfig + "\n[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  minimalConfig + "\n[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "invalid idle_timeout",
			config:  minimalConfig + "\n[server]\nidle_timeout = \"later\"\n",
			wantErr: "invalid idle_timeout",
		},
		{
			name:    "invalid max_upload_size",
			config:  minimalConfig + "\n[api]\nmax_upload_size = \"huge\"\n",
			wantErr: "invalid max_upload_size",
		},
		{
			name:    "invalid request_timeout",
			config:  minimalConfig + "\n[pipeline]\nrequest_timeout = \"bad\"\n",
			wantErr: "invalid request_timeout",
		},
		{
			name:    "negative extract workers",
			config:  minimalConfig + "\n[pipeline]\nextract_workers = -1\n",
			wantErr: "extract_workers must be positive",
		},
		{
			name: "missing summarize token",
			config: `
[database]
name = "brief"
user = "brief"

[storage]
connection_string = "conn"
`,
			wantErr: "token required",
		},
		{
			name:    "invalid dispatch url",
			config:  minimalConfig + "\n[pipeline.dispatch]\nurl = \"relay\"\n",
			wantErr: "invalid url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
