package resource_test

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/query"
	"github.com/stockhubapp/stockhub/internal/resource"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func windowFor(t *testing.T, rawQuery string) (*resource.Window, *url.URL) {
	t.Helper()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/items?"+rawQuery, nil)

	w, err := resource.ParseWindow(c)

	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return w, c.Request.URL
}

func TestParseWindowAbsentMeansNoWindow(t *testing.T) {
	w, _ := windowFor(t, "search=cam")

	if w != nil {
		t.Fatalf("expected nil window, got %+v", w)
	}
}

func TestParseWindowRejectsGarbage(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/items?limit=banana", nil)

	_, err := resource.ParseWindow(c)

	if err == nil {
		t.Fatal("expected an error for a non-numeric limit")
	}
}

func TestFirstPageHasNextNoPrev(t *testing.T) {
	// 5-row collection, first page of 2: full page means there is a next
	w, u := windowFor(t, "limit=2&offset=0")

	links := w.BuildLinks(u, 2)

	if !strings.Contains(links.Next, "offset=2") {
		t.Fatalf("expected next with offset=2, got %q", links.Next)
	}

	if links.Prev != "" {
		t.Fatalf("first page must have no prev, got %q", links.Prev)
	}
}

func TestLastPageHasPrevNoNext(t *testing.T) {
	// same 5 rows, offset=4 returns a single row: short page, no next
	w, u := windowFor(t, "offset=4&limit=2")

	links := w.BuildLinks(u, 1)

	if links.Next != "" {
		t.Fatalf("short page must have no next, got %q", links.Next)
	}

	if !strings.Contains(links.Prev, "offset=2") {
		t.Fatalf("expected prev with offset=2, got %q", links.Prev)
	}
}

func TestPrevFloorsAtZero(t *testing.T) {
	w, u := windowFor(t, "offset=1&limit=5")

	links := w.BuildLinks(u, 3)

	if !strings.Contains(links.Prev, "offset=0") {
		t.Fatalf("prev offset must floor at 0, got %q", links.Prev)
	}
}

func TestLinksPreserveOtherParams(t *testing.T) {
	w, u := windowFor(t, "limit=2&offset=2&search=cam")

	links := w.BuildLinks(u, 2)

	if !strings.Contains(links.Next, "search=cam") || !strings.Contains(links.Prev, "search=cam") {
		t.Fatalf("links must keep remaining params: next=%q prev=%q", links.Next, links.Prev)
	}
}

func TestOffsetOnlyWindowHasNoNext(t *testing.T) {
	w, u := windowFor(t, "offset=3")

	links := w.BuildLinks(u, 10)

	if links.Next != "" {
		t.Fatalf("no limit means no next step to compute, got %q", links.Next)
	}

	if !strings.Contains(links.Prev, "offset=0") {
		t.Fatalf("expected prev floored at 0, got %q", links.Prev)
	}
}

func TestWindowAppliesToBuilder(t *testing.T) {
	w, _ := windowFor(t, "limit=2&offset=4")

	sql, args := w.Apply(query.New("items")).SelectSQL()

	if !strings.Contains(sql, "LIMIT $1 OFFSET $2") {
		t.Fatalf("window not applied: %q", sql)
	}

	if args[0] != 2 || args[1] != 4 {
		t.Fatalf("unexpected args: %v", args)
	}
}
