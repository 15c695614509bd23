package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IgorGrieder/linkhub/internal/constants"
	"github.com/IgorGrieder/linkhub/pkg/httputils"
)

// ownerRoute mounts a guarded link update and reports which link ids got
// through.
func ownerRoute(keys []string) (http.Handler, *[]string) {
	var updated []string
	mux := http.NewServeMux()
	mux.Handle("PATCH /api/links/{id}", APIKeyMiddleware(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		updated = append(updated, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})))
	return mux, &updated
}

func patchLink(h http.Handler, id, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/links/"+id, strings.NewReader(`{"title":"Blog"}`))
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIKeyMiddleware_OwnerRoute(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantCode string
	}{
		{"missing key", "", constants.CodeAPIKeyMissing},
		{"blank key", "   ", constants.CodeAPIKeyMissing},
		{"unknown key", "editor-key-3", constants.CodeAPIKeyInvalid},
		{"prefix of a real key", "editor-key", constants.CodeAPIKeyInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, updated := ownerRoute([]string{"editor-key-1", " editor-key-2 "})

			rec := patchLink(h, "L1", tt.key)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", rec.Code)
			}
			var resp httputils.APIResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Error, tt.wantCode)
			}
			if len(*updated) != 0 {
				t.Errorf("rejected request reached the handler: %v", *updated)
			}
		})
	}
}

func TestAPIKeyMiddleware_AcceptsEveryConfiguredKey(t *testing.T) {
	h, updated := ownerRoute([]string{"editor-key-1", " editor-key-2 ", ""})

	for _, key := range []string{"editor-key-1", "editor-key-2"} {
		if rec := patchLink(h, "L-"+key, key); rec.Code != http.StatusNoContent {
			t.Errorf("key %q: status %d", key, rec.Code)
		}
	}
	if len(*updated) != 2 || (*updated)[1] != "L-editor-key-2" {
		t.Errorf("updated = %v", *updated)
	}
}

func TestAPIKeyMiddleware_OpenWithoutKeys(t *testing.T) {
	for _, keys := range [][]string{nil, {}, {" ", ""}} {
		h, updated := ownerRoute(keys)
		if rec := patchLink(h, "L1", ""); rec.Code != http.StatusNoContent {
			t.Errorf("keys %q: status %d", keys, rec.Code)
		}
		if len(*updated) != 1 {
			t.Errorf("keys %q: handler not reached", keys)
		}
	}
}
