package resource

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/query"
)

// Window is the pagination window requested by the client. Either side may
// be present on its own; a request with neither produces a nil Window and
// an unpaginated response.
type Window struct {
	Limit     int
	Offset    int
	HasLimit  bool
	HasOffset bool
}

// Links are the hypermedia navigation links attached to a paginated list
// response.
type Links struct {
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

// ParseWindow reads limit/offset from the request query. Absent params mean
// no pagination; malformed or negative values are a client error.
func ParseWindow(c *gin.Context) (*Window, error) {
	rawLimit, hasLimit := c.GetQuery("limit")
	rawOffset, hasOffset := c.GetQuery("offset")

	if !hasLimit && !hasOffset {
		return nil, nil
	}

	w := &Window{HasLimit: hasLimit, HasOffset: hasOffset}

	if hasLimit {
		n, err := strconv.Atoi(rawLimit)

		if err != nil || n < 0 {
			return nil, &Error{Status: 400, Code: "invalid_request", Message: "limit must be a non-negative integer"}
		}

		w.Limit = n
	}

	if hasOffset {
		n, err := strconv.Atoi(rawOffset)

		if err != nil || n < 0 {
			return nil, &Error{Status: 400, Code: "invalid_request", Message: "offset must be a non-negative integer"}
		}

		w.Offset = n
	}

	return w, nil
}

// Apply constrains the builder by whichever sides of the window are present.
func (w *Window) Apply(b *query.Builder) *query.Builder {
	if w == nil {
		return b
	}

	if w.HasLimit {
		b = b.Limit(w.Limit)
	}

	if w.HasOffset {
		b = b.Offset(w.Offset)
	}

	return b
}

// BuildLinks derives next/prev links from the request URL and the number of
// rows actually returned. No next link is produced when the page came back
// short (end of collection) or when no limit was given to step by.
func (w *Window) BuildLinks(requestURL *url.URL, returned int) *Links {
	if w == nil {
		return nil
	}

	links := &Links{}

	if w.HasLimit && returned == w.Limit && w.Limit > 0 {
		links.Next = pageURL(requestURL, w.Offset+w.Limit, w)
	}

	if w.Offset > 0 {
		// without a limit there is no step size, so prev goes to the start
		prev := 0

		if w.HasLimit {
			prev = w.Offset - w.Limit
			if prev < 0 {
				prev = 0
			}
		}

		links.Prev = pageURL(requestURL, prev, w)
	}

	return links
}

// pageURL rewrites only the window params, keeping path and the remaining
// query (sort, search) intact so links stay composable.
func pageURL(requestURL *url.URL, offset int, w *Window) string {
	u := *requestURL
	q := u.Query()

	q.Set("offset", strconv.Itoa(offset))

	if w.HasLimit {
		q.Set("limit", strconv.Itoa(w.Limit))
	}

	u.RawQuery = q.Encode()

	return u.RequestURI()
}
