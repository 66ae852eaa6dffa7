package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"folio/internal/audit"
	auditmemory "folio/internal/audit/store/memory"
	"folio/internal/book"
	"folio/internal/book/store/memory"
	"folio/internal/platform/metrics"
	"folio/pkg/testutil"
)

func newBookRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())

	audits := audit.NewService(auditmemory.NewInMemoryStore(), audit.DefaultRegistry(), logger, m)
	svc := book.NewService(memory.NewInMemoryStore(), audits, logger)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// do serves the request as the authenticated test actor.
func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	return testutil.Do(router, testutil.WithRequestScope(req, "tester-1", "admin"))
}

func createBook(t *testing.T, router http.Handler, title string) string {
	t.Helper()
	rec := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/books", map[string]string{
		"title":       title,
		"authors":     "Some Author",
		"publishedBy": "Some Press",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating book, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.ID == "" {
		t.Fatalf("expected id in create response")
	}
	return resp.ID
}

func TestCreateAndGetBook(t *testing.T) {
	router := newBookRouter(t)
	id := createBook(t, router, "The Phoenix Project")

	rec := do(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/books/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching book, got %d", rec.Code)
	}

	var fetched book.Book
	testutil.DecodeJSON(t, rec, &fetched)
	if fetched.Title != "The Phoenix Project" {
		t.Fatalf("expected title to round-trip, got %q", fetched.Title)
	}
	if fetched.CreatedBy != "tester-1" {
		t.Fatalf("expected createdBy from request scope, got %q", fetched.CreatedBy)
	}
}

func TestCreateBookValidation(t *testing.T) {
	router := newBookRouter(t)

	cases := []struct {
		name    string
		payload map[string]string
	}{
		{"missing title", map[string]string{"authors": "A", "publishedBy": "P"}},
		{"missing authors", map[string]string{"title": "T", "publishedBy": "P"}},
		{"missing publisher", map[string]string{"title": "T", "authors": "A"}},
		{"title too long", map[string]string{
			"title":       strings.Repeat("x", 201),
			"authors":     "A",
			"publishedBy": "P",
		}},
		{"authors too long", map[string]string{
			"title":       "T",
			"authors":     strings.Repeat("x", 501),
			"publishedBy": "P",
		}},
		{"publisher too long", map[string]string{
			"title":       "T",
			"authors":     "A",
			"publishedBy": strings.Repeat("x", 101),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/books", tc.payload))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestUpdateBook(t *testing.T) {
	router := newBookRouter(t)
	id := createBook(t, router, "Working Title")

	rec := do(router, testutil.NewJSONRequest(t, http.MethodPatch, "/api/books/"+id, map[string]string{
		"title": "Shipped Title",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating book, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated book.Book
	testutil.DecodeJSON(t, rec, &updated)
	if updated.Title != "Shipped Title" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.UpdatedBy != "tester-1" {
		t.Fatalf("expected updatedBy from request scope, got %q", updated.UpdatedBy)
	}
}

func TestDeleteRestoreBook(t *testing.T) {
	router := newBookRouter(t)
	id := createBook(t, router, "Recycled")

	rec := do(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/books/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting book, got %d", rec.Code)
	}

	rec = do(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/books/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 fetching deleted book, got %d", rec.Code)
	}

	rec = do(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/books/"+id+"/restore", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 restoring book, got %d", rec.Code)
	}

	rec = do(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/books/"+id+"/restore", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 restoring live book, got %d", rec.Code)
	}
}

func TestListBooksPagination(t *testing.T) {
	router := newBookRouter(t)
	for _, title := range []string{"A", "B", "C"} {
		createBook(t, router, title)
	}

	rec := do(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/books?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing books, got %d", rec.Code)
	}

	var page book.Page
	testutil.DecodeJSON(t, rec, &page)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatalf("expected a next cursor")
	}

	rec = do(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/books?limit=2&cursor="+url.QueryEscape(page.NextCursor), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on second page, got %d", rec.Code)
	}

	var second book.Page
	testutil.DecodeJSON(t, rec, &second)
	if len(second.Items) != 1 {
		t.Fatalf("expected 1 item on second page, got %d", len(second.Items))
	}
	if second.NextCursor != "" {
		t.Fatalf("expected no cursor on final page, got %q", second.NextCursor)
	}
}

func TestListBooksInvalidCursor(t *testing.T) {
	router := newBookRouter(t)

	rec := do(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/books?cursor=%21%21not-a-cursor", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid cursor, got %d", rec.Code)
	}
}
