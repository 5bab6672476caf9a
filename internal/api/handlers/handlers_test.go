package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fluffyriot/ttsync/internal/config"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/healthz", h.HealthCheckHandler)
	r.POST("/sync", h.SyncProfileHandler)
	r.GET("/sync", h.SyncProfileHandler)
	r.GET("/image-proxy", h.ImageProxyHandler)
	return r
}

func TestHealthCheckNoDatabase(t *testing.T) {
	h := &Handler{}
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "failure" {
		t.Errorf("status field = %q, want failure", body["status"])
	}
}

func TestSyncMissingUsername(t *testing.T) {
	h := &Handler{Config: &config.AppConfig{}}
	r := newTestRouter(h)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"empty form", httptest.NewRequest(http.MethodPost, "/sync", nil)},
		{"blank query", httptest.NewRequest(http.MethodGet, "/sync?username=", nil)},
		{"bare at sign", httptest.NewRequest(http.MethodGet, "/sync?username=%40", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestImageProxyMissingURL(t *testing.T) {
	h := &Handler{Config: &config.AppConfig{PlaceholderImage: "/static/default-avatar.png"}}
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/image-proxy", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestImageProxyDisallowedHost(t *testing.T) {
	h := &Handler{Config: &config.AppConfig{
		AllowedImageHosts: []string{"tiktokcdn.com"},
		PlaceholderImage:  "/static/default-avatar.png",
	}}
	w := httptest.NewRecorder()
	target := "/image-proxy?url=" + url.QueryEscape("https://evil.example.com/avatar.jpg")
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/static/default-avatar.png" {
		t.Errorf("redirect target = %q, want placeholder", loc)
	}
}

func TestImageProxyStreamsAllowedHost(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "fake-png-bytes")
	}))
	defer upstream.Close()

	host := strings.TrimPrefix(upstream.URL, "http://")
	host = host[:strings.LastIndex(host, ":")]

	h := &Handler{Config: &config.AppConfig{
		AllowedImageHosts: []string{host},
		PlaceholderImage:  "/static/default-avatar.png",
	}}
	w := httptest.NewRecorder()
	target := "/image-proxy?url=" + url.QueryEscape(upstream.URL+"/avatar.png")
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Errorf("cache control = %q", got)
	}
	if w.Body.String() != "fake-png-bytes" {
		t.Errorf("body = %q, not streamed through", w.Body.String())
	}
}

func TestImageProxyUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	host := strings.TrimPrefix(upstream.URL, "http://")
	host = host[:strings.LastIndex(host, ":")]

	h := &Handler{Config: &config.AppConfig{
		AllowedImageHosts: []string{host},
		PlaceholderImage:  "/static/default-avatar.png",
	}}
	w := httptest.NewRecorder()
	target := "/image-proxy?url=" + url.QueryEscape(upstream.URL+"/avatar.png")
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want placeholder redirect on upstream error", w.Code)
	}
}

func TestAllowedImageHost(t *testing.T) {
	h := &Handler{Config: &config.AppConfig{
		AllowedImageHosts: []string{"tiktokcdn.com", "tiktokcdn-us.com"},
	}}

	tests := []struct {
		host string
		want bool
	}{
		{"tiktokcdn.com", true},
		{"p16-sign-va.tiktokcdn.com", true},
		{"TIKTOKCDN.COM", true},
		{"p19.tiktokcdn-us.com", true},
		{"eviltiktokcdn.com", false},
		{"tiktokcdn.com.evil.net", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := h.allowedImageHost(tt.host); got != tt.want {
			t.Errorf("allowedImageHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
