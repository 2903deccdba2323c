package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveTest(t *testing.T, cfg *Config, target string) *httptest.ResponseRecorder {
	t.Helper()

	mux := newRouter(cfg, newHub(cfg.sensorSecret), make(chan error, 64))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	return rec
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{"home page", "/", http.StatusOK, "text/html; charset=utf-8", `src="assets/app.js"`},
		{"script", "/assets/app.js", http.StatusOK, "text/javascript; charset=utf-8", "backgroundColor"},
		{"stylesheet", "/assets/app.css", http.StatusOK, "text/css; charset=utf-8", "background-color"},
		{"missing asset", "/assets/nope.js", http.StatusNotFound, "", ""},
		{"asset traversal", "/assets/../web.go", http.StatusNotFound, "", ""},
		{"health check", "/healthz", http.StatusOK, "text/plain; charset=utf-8", "Ok"},
		{"version", "/version", http.StatusOK, "text/plain; charset=utf-8", "nunway v" + releaseVersion},
		{"robots", "/robots.txt", http.StatusOK, "text/plain; charset=utf-8", "Disallow: /ws"},
		{"no color yet", "/color", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveTest(t, &Config{}, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.wantContain != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := serveTest(t, &Config{}, "/healthz")
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = serveTest(t, &Config{tlsCert: "cert.pem", tlsKey: "key.pem"}, "/healthz")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestPrefixedRoutes(t *testing.T) {
	cfg := &Config{prefix: "/nunway"}

	assert.Equal(t, http.StatusOK, serveTest(t, cfg, "/nunway/healthz").Code)
	assert.Equal(t, http.StatusOK, serveTest(t, cfg, "/nunway/").Code)
	assert.Equal(t, http.StatusNotFound, serveTest(t, cfg, "/healthz").Code)
}

func TestProfileRoutes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serveTest(t, &Config{}, "/pprof/heap").Code)
	assert.Equal(t, http.StatusOK, serveTest(t, &Config{profile: true}, "/pprof/heap").Code)
}

func TestQR(t *testing.T) {
	rec := serveTest(t, &Config{}, "/qr")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestPageURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/qr", nil)
	r.Host = "colors.example.com"
	assert.Equal(t, "http://colors.example.com/", pageURL(&Config{}, r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://colors.example.com/nunway/", pageURL(&Config{prefix: "/nunway"}, r))
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1:5000", realIP(r))

	r.Header.Set("X-Real-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:5000", realIP(r))

	r.Header.Set("CF-Connecting-IP", "192.0.2.7")
	assert.Equal(t, "192.0.2.7:5000", realIP(r))
}

func TestPageScriptRequiresNumericChannels(t *testing.T) {
	body := serveTest(t, &Config{}, "/assets/app.js").Body.String()

	for _, ch := range []string{"red", "green", "blue"} {
		assert.Contains(t, body, `typeof obj.`+ch+` !== "number"`)
	}
	assert.NotContains(t, body, "=== undefined")
}
