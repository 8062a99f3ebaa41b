package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminRequiresToken(t *testing.T) {
	router, _ := setupTestRouter(t, true)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/v1/admin/engineers"},
		{"POST", "/api/v1/admin/artifacts/rebuild"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestEngineersEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, true)

	req := httptest.NewRequest("GET", "/api/v1/admin/engineers", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Engineers []EngineerInfo `json:"engineers"`
		Documents int            `json:"documents"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Engineers) != 2 || resp.Engineers[0].Engineer != "alice" || resp.Engineers[1].Engineer != "bob" {
		t.Fatalf("unexpected engineers: %+v", resp.Engineers)
	}
	if len(resp.Engineers[0].TopTags) == 0 {
		t.Error("expected tags for alice")
	}
	if resp.Documents != 4 {
		t.Errorf("expected 4 documents, got %d", resp.Documents)
	}
}

func TestEngineersNotReady(t *testing.T) {
	router, _ := setupTestRouter(t, false)
	req := httptest.NewRequest("GET", "/api/v1/admin/engineers", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, false)

	req := httptest.NewRequest("POST", "/api/v1/admin/artifacts/rebuild", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["status"] != "rebuilt" {
		t.Errorf("expected status rebuilt, got %v", resp["status"])
	}

	// the rebuilt artifacts serve requests
	w = post(router, "/ai/assign", `{"ticket_text":"Instalasi server database"}`)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 after rebuild, got %d", w.Code)
	}
}
