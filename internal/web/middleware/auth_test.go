package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/langtool/internal/config"
)

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		cfg     config.SecurityConfig
		headers map[string]string
		want    int
	}{
		{
			name: "disabled passes through",
			cfg:  config.SecurityConfig{RequireAPIKey: false},
			want: http.StatusNoContent,
		},
		{
			name: "missing key",
			cfg:  config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}},
			want: http.StatusUnauthorized,
		},
		{
			name:    "wrong key",
			cfg:     config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}},
			headers: map[string]string{"X-API-Key": "nope"},
			want:    http.StatusForbidden,
		},
		{
			name:    "header key",
			cfg:     config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}},
			headers: map[string]string{"X-API-Key": "k2"},
			want:    http.StatusNoContent,
		},
		{
			name:    "bearer token",
			cfg:     config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}},
			headers: map[string]string{"Authorization": "Bearer k1"},
			want:    http.StatusNoContent,
		},
		{
			name:    "no keys configured rejects everything",
			cfg:     config.SecurityConfig{RequireAPIKey: true},
			headers: map[string]string{"X-API-Key": "k1"},
			want:    http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			h := APIKeyAuth(&cfg)(ok)

			req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
