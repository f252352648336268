package resource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stockhubapp/stockhub/internal/http/middlewares"
	"github.com/stockhubapp/stockhub/internal/resource"
)

func endpointRouter(db *fakeRunner, opts resource.Options, orgID string) *gin.Engine {
	r := gin.New()

	grp := r.Group("/")

	grp.Use(func(c *gin.Context) {
		if orgID != "" {
			c.Set(middlewares.CtxUserID, "user-1")
			c.Set(middlewares.CtxOrganizationID, orgID)
			c.Set(middlewares.CtxRoleID, 2)
		}
	})

	resource.Mount(grp, "/items", resource.NewGateway(db), "items", "id", opts)

	return r
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
	}

	return body
}

func TestListEnvelopeWithoutWindow(t *testing.T) {
	db := &fakeRunner{
		selectFn: func(ctx context.Context, sql string, args ...any) ([]resource.Row, error) {
			return []resource.Row{{"id": "a"}, {"id": "b"}}, nil
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/items", nil))

	if w.Code != 200 {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	results, ok := body["results"].([]any)

	if !ok || len(results) != 2 {
		t.Fatalf("expected results envelope with 2 rows, got %v", body)
	}

	if _, present := body["links"]; present {
		t.Fatal("unwindowed list must not carry links")
	}
}

func TestListEnvelopeCarriesLinks(t *testing.T) {
	db := &fakeRunner{
		selectFn: func(ctx context.Context, sql string, args ...any) ([]resource.Row, error) {
			return []resource.Row{{"id": "c"}, {"id": "d"}}, nil
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/items?limit=2&offset=2", nil))

	body := decodeBody(t, w)

	links, ok := body["links"].(map[string]any)

	if !ok {
		t.Fatalf("expected links in %v", body)
	}

	next, _ := links["next"].(string)
	prev, _ := links["prev"].(string)

	if !strings.Contains(next, "offset=4") || !strings.Contains(prev, "offset=0") {
		t.Fatalf("unexpected links: next=%q prev=%q", next, prev)
	}
}

func TestCreateBackfillsOrganization(t *testing.T) {
	db := &fakeRunner{
		selectFn: func(ctx context.Context, sql string, args ...any) ([]resource.Row, error) {
			if strings.HasPrefix(sql, "INSERT") {
				return []resource.Row{{"id": "item-1"}}, nil
			}
			return []resource.Row{{"id": "item-1", "name": "Tripod", "organization_id": "org-1"}}, nil
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/items", `{"name":"Tripod"}`))

	if w.Code != 201 {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	insert := db.selects[0]

	if !strings.Contains(insert.sql, `"organization_id"`) {
		t.Fatalf("caller's organization not backfilled: %q", insert.sql)
	}

	if !containsArg(insert.args, "org-1") {
		t.Fatalf("expected org-1 among insert args, got %v", insert.args)
	}
}

func TestCreateKeepsExplicitOrganization(t *testing.T) {
	db := &fakeRunner{
		selectFn: func(ctx context.Context, sql string, args ...any) ([]resource.Row, error) {
			if strings.HasPrefix(sql, "INSERT") {
				return []resource.Row{{"id": "item-2"}}, nil
			}
			return []resource.Row{{"id": "item-2"}}, nil
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/items", `{"name":"Dolly","organization_id":"org-9"}`))

	if w.Code != 201 {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	if !containsArg(db.selects[0].args, "org-9") || containsArg(db.selects[0].args, "org-1") {
		t.Fatalf("explicit organization must win: %v", db.selects[0].args)
	}
}

func TestUpdateRejectsEmptyPayload(t *testing.T) {
	db := &fakeRunner{}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("PUT", "/items/item-1", `{}`))

	if w.Code != 400 {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	if len(db.execs) != 0 {
		t.Fatalf("empty payload must not reach the store, got %d execs", len(db.execs))
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	affected := int64(1)
	db := &fakeRunner{
		execFn: func(ctx context.Context, sql string, args ...any) (int64, error) {
			return affected, nil
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/items/item-1", nil))

	if w.Code != 200 {
		t.Fatalf("first delete: status %d body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	if body["message"] != "Deleted" || body["id"] != "item-1" {
		t.Fatalf("unexpected delete body: %v", body)
	}

	// second call removes nothing
	affected = 0

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/items/item-1", nil))

	if w.Code != 204 {
		t.Fatalf("repeat delete: status %d body %s", w.Code, w.Body.String())
	}

	if w.Body.Len() != 0 {
		t.Fatalf("204 must have no body, got %q", w.Body.String())
	}
}

func TestDeleteUsesCustomMessage(t *testing.T) {
	db := &fakeRunner{
		execFn: func(ctx context.Context, sql string, args ...any) (int64, error) {
			return 1, nil
		},
	}
	r := endpointRouter(db, resource.Options{
		Messages: resource.Messages{Deleted: "Rental closed"},
	}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/items/rental-1", nil))

	if decodeBody(t, w)["message"] != "Rental closed" {
		t.Fatalf("custom delete message not used: %s", w.Body.String())
	}
}

func TestStoreErrorsAreTranslated(t *testing.T) {
	db := &fakeRunner{
		selectFn: func(ctx context.Context, sql string, args ...any) ([]resource.Row, error) {
			return nil, &pgconn.PgError{Code: "23505"}
		},
	}
	r := endpointRouter(db, resource.Options{}, "org-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("POST", "/items", `{"serial":"SN-1"}`))

	if w.Code != 409 {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)

	errObj, ok := body["error"].(map[string]any)

	if !ok || errObj["code"] != "already_exists" || errObj["message"] != "Already exists" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func containsArg(args []any, want any) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
