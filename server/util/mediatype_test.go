package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequireJSONContentType(t *testing.T) {
	cases := []struct {
		name   string
		ct     string
		ok     bool
		status int
	}{
		{name: "json with charset", ct: "application/json; charset=utf-8", ok: true, status: http.StatusOK},
		{name: "plain json", ct: "application/json", ok: true, status: http.StatusOK},
		{name: "form", ct: "application/x-www-form-urlencoded", status: http.StatusUnsupportedMediaType},
		{name: "missing", ct: "", status: http.StatusUnsupportedMediaType},
		{name: "malformed", ct: "application/json; =", status: http.StatusUnsupportedMediaType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader("{}"))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			rr := httptest.NewRecorder()

			if got := RequireJSONContentType(rr, req); got != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, got)
			}
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestExtractMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=abc")
	rr := httptest.NewRecorder()

	mediaType, ok := ExtractMediaType(rr, req)
	if !ok {
		t.Fatalf("expected media type to parse")
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("unexpected media type %q", mediaType)
	}
}
