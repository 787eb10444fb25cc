package container

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-screen-inspector/internal/config"

	"github.com/gin-gonic/gin"
)

func TestContainer_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetRGBA(10, 10, color.RGBA{0, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	cfg := config.Defaults()
	cfg.ParallelAnalyzers = true
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Failed to build container: %v", err)
	}
	defer c.Close()

	body, _ := json.Marshal(map[string]string{"image_path": path})
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"width":16`) {
		t.Errorf("Expected a 16px wide buffer, got %s", rec.Body.String())
	}

	// Metrics reflect the request once events are flushed
	c.events.Wait()
	metricsRec := httptest.NewRecorder()
	c.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(metricsRec.Body.String(), `"successful_analyses":1`) {
		t.Errorf("Expected one successful analysis, got %s", metricsRec.Body.String())
	}
}

func TestContainer_InvalidAzureKey(t *testing.T) {
	cfg := config.Defaults()
	cfg.AzureStorageAccount = "acct"
	cfg.AzureStorageKey = "%%%not-base64"

	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for an invalid Azure key")
	}
}

func postAnalyze(t *testing.T, c *Container, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)
	return rec
}

func TestContainer_SourcePolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.RemoteSources = false
	cfg.ImagePathRoot = t.TempDir()
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("Failed to build container: %v", err)
	}
	defer c.Close()

	testCases := []struct {
		name    string
		payload map[string]string
	}{
		{"remote sources disabled", map[string]string{"image_url": "https://example.com/a.png"}},
		{"path outside root", map[string]string{"image_path": "/etc/hostname"}},
		{"missing path outside root", map[string]string{"image_path": "/nonexistent/a.png"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postAnalyze(t, c, tc.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"code":"INVALID_ARGUMENT"`) {
				t.Errorf("Expected INVALID_ARGUMENT, got %s", rec.Body.String())
			}
		})
	}
}
