package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func TestLoadConfig_Success(t *testing.T) {
	configPath := writeConfig(t, `port: 8080
database:
  type: redis
  connectionString: "redis://localhost:6379/0"
uploads:
  directory: /data/uploads
detection:
  name: HTTPInference
  timeout: 5s
  url: http://localhost:8000/predict
  svgFallbackWidth: 640
logging:
  level: debug
  format: json
`)

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 8080 {
		t.Errorf("Expected port to be 8080, got %d", config.Port)
	}
	if config.Database.Type != "redis" {
		t.Errorf("Expected database type 'redis', got '%s'", config.Database.Type)
	}
	if config.Database.ConnectionString != "redis://localhost:6379/0" {
		t.Errorf("Unexpected connection string '%s'", config.Database.ConnectionString)
	}
	if config.Uploads.Directory != "/data/uploads" {
		t.Errorf("Unexpected upload directory '%s'", config.Uploads.Directory)
	}
	if config.Detection.Name != "HTTPInference" {
		t.Errorf("Expected detector 'HTTPInference', got '%s'", config.Detection.Name)
	}
	if config.Detection.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %s", config.Detection.Timeout)
	}
	if config.Detection.Params["url"] != "http://localhost:8000/predict" {
		t.Errorf("Expected url param to be inlined, got %v", config.Detection.Params)
	}
	if config.Detection.Params["svgFallbackWidth"] != 640 {
		t.Errorf("Expected svgFallbackWidth 640, got %v", config.Detection.Params["svgFallbackWidth"])
	}
	if _, ok := config.Detection.Params["name"]; ok {
		t.Error("Expected name not to leak into params")
	}
	if config.Logging.Format != "json" {
		t.Errorf("Expected json log format, got '%s'", config.Logging.Format)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 4000 {
		t.Errorf("Expected default port 4000, got %d", config.Port)
	}
	if config.Database.Type != "sqlite" || config.Database.ConnectionString != "./image-analysis.db" {
		t.Errorf("Unexpected default database %+v", config.Database)
	}
	if config.Uploads.Directory != "uploads" || config.Uploads.URLPrefix != "/uploads" || config.Uploads.MaxBodySize != "10M" {
		t.Errorf("Unexpected default uploads %+v", config.Uploads)
	}
	if len(config.CORS.AllowOrigins) != 1 || config.CORS.AllowOrigins[0] != "http://localhost:4001" {
		t.Errorf("Unexpected default CORS origins %v", config.CORS.AllowOrigins)
	}
	if config.Detection.Name != "GoogleVision" || config.Detection.Timeout != 30*time.Second {
		t.Errorf("Unexpected default detection %+v", config.Detection)
	}
	if config.Detection.Params == nil {
		t.Error("Expected params to be an empty map")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_TYPE", "redis")
	t.Setenv("DATABASE_CONNECTION_STRING", "redis://cache:6379/1")
	t.Setenv("UPLOAD_DIR", "/tmp/uploads")
	t.Setenv("DETECTOR", "HTTPInference")
	t.Setenv("LOG_LEVEL", "warn")

	config, err := LoadConfig(writeConfig(t, "port: 8080\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("Expected PORT override 9090, got %d", config.Port)
	}
	if config.Database.Type != "redis" || config.Database.ConnectionString != "redis://cache:6379/1" {
		t.Errorf("Unexpected database %+v", config.Database)
	}
	if config.Uploads.Directory != "/tmp/uploads" {
		t.Errorf("Unexpected upload directory '%s'", config.Uploads.Directory)
	}
	if config.Detection.Name != "HTTPInference" {
		t.Errorf("Unexpected detector '%s'", config.Detection.Name)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Unexpected log level '%s'", config.Logging.Level)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown database type", content: "database:\n  type: postgres\n"},
		{name: "port out of range", content: "port: 70000\n"},
		{name: "negative timeout", content: "detection:\n  name: GoogleVision\n  timeout: -1s\n"},
		{name: "url prefix without slash", content: "uploads:\n  urlPrefix: uploads\n"},
		{name: "unknown log format", content: "logging:\n  format: xml\n"},
		{name: "malformed yaml", content: "port: [1, 2\n"},
		{name: "non numeric PORT", content: "{}", env: map[string]string{"PORT": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			config, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Expected error, got config %+v", config)
			}
			if config != nil {
				t.Error("Expected config to be nil on error")
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/path/that/does/not/exist/config.yaml")

	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if config != nil {
		t.Error("Expected config to be nil when file doesn't exist")
	}
}
