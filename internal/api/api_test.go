package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/starford/itembox/internal/itemservice"
	"github.com/starford/itembox/internal/models"
	"github.com/starford/itembox/internal/testutil"
)

// testEnv sets up a temp storage root, journal, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()
	dir, store := testutil.TestRoot(t)
	db := testutil.TestJournal(t)
	svc := itemservice.NewService(store, db, testutil.QuietLogger())
	return NewRouter(svc, authToken != "", authToken, nil), dir
}

func do(t *testing.T, router http.Handler, method, target string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func addItem(t *testing.T, router http.Handler, name string) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/items", AddItemRequest{Item: name}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add %q status = %d, body = %s", name, w.Code, w.Body.String())
	}
}

func TestAddAndListSorted(t *testing.T) {
	router, dir := testEnv(t, "")
	for _, name := range []string{"abc", "zzz", "ccc"} {
		addItem(t, router, name)
	}
	if _, err := os.Stat(filepath.Join(dir, "zzz")); err != nil {
		t.Errorf("item file missing: %v", err)
	}

	w := do(t, router, http.MethodGet, "/items?sorted=true", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp ItemListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if want := []string{"abc", "ccc", "zzz"}; !slices.Equal(resp.Items, want) {
		t.Errorf("items = %v, want %v", resp.Items, want)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/items", nil, nil)
	if got := w.Body.String(); got != "{\"items\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestAddDuplicate(t *testing.T) {
	router, _ := testEnv(t, "")
	addItem(t, router, "dup")
	w := do(t, router, http.MethodPost, "/items", AddItemRequest{Item: "dup"}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate add = %d, want 409", w.Code)
	}
}

func TestAddInvalid(t *testing.T) {
	router, _ := testEnv(t, "")
	for _, name := range []string{"", "../x", "a/b"} {
		w := do(t, router, http.MethodPost, "/items", AddItemRequest{Item: name}, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("add %q = %d, want 400", name, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}

func TestRemove(t *testing.T) {
	router, dir := testEnv(t, "")
	addItem(t, router, "buy milk")

	w := do(t, router, http.MethodDelete, "/items/buy%20milk", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "buy milk")); !os.IsNotExist(err) {
		t.Errorf("item file still present: %v", err)
	}

	w = do(t, router, http.MethodDelete, "/items/buy%20milk", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second remove = %d, want 404", w.Code)
	}
}

func TestRemoveEncodedSlashRejected(t *testing.T) {
	router, _ := testEnv(t, "")
	w := do(t, router, http.MethodDelete, "/items/..%2Fsecret", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("remove traversal = %d, want 400", w.Code)
	}
}

func TestHistory(t *testing.T) {
	router, _ := testEnv(t, "")
	addItem(t, router, "abc")
	do(t, router, http.MethodDelete, "/items/abc", nil, nil)

	w := do(t, router, http.MethodGet, "/history?limit=10", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history = %d", w.Code)
	}
	var resp HistoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("events = %+v", resp.Events)
	}
	if resp.Events[0].Op != models.OpRemove || resp.Events[1].Op != models.OpAdd {
		t.Errorf("events = %+v", resp.Events)
	}
}

func TestAuthToken(t *testing.T) {
	router, _ := testEnv(t, "secret")

	w := do(t, router, http.MethodGet, "/items", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}
	w = do(t, router, http.MethodGet, "/items", nil, map[string]string{"Authorization": "Bearer wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
	w = do(t, router, http.MethodGet, "/items", nil, map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestRemoveNameContainingPercent(t *testing.T) {
	router, dir := testEnv(t, "")
	addItem(t, router, "a%41")
	addItem(t, router, "aA")

	w := do(t, router, http.MethodDelete, "/items/a%2541", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("remove = %d, body = %s", w.Code, w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "a%41")); !os.IsNotExist(err) {
		t.Errorf("a%%41 still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "aA")); err != nil {
		t.Errorf("aA should be untouched: %v", err)
	}
}

func TestBadQueryParams(t *testing.T) {
	router, _ := testEnv(t, "")
	for _, target := range []string{
		"/items?sorted=yes",
		"/history?limit=abc",
		"/history?limit=-1",
	} {
		w := do(t, router, http.MethodGet, target, nil, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", target, w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/items?sorted=true", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("sorted=true = %d, want 200", w.Code)
	}
}
