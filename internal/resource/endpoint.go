package resource

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/http/handlers"
	"github.com/stockhubapp/stockhub/internal/http/middlewares"
	"github.com/stockhubapp/stockhub/internal/query"
)

// Options configures the handlers produced for one resource. The zero value
// gives a tenant-scoped resource with no modifiers, no default sort and no
// search support.
type Options struct {
	// Modify shapes every query for the resource (joins, filters, select
	// narrowing). ResModify shapes only the re-fetch after create/update.
	Modify    Modifier
	ResModify Modifier

	// Messages overrides classified error text and the delete success
	// message. Status codes are never affected.
	Messages Messages

	// Unscoped disables the organization constraint for tables that carry
	// no tenant ownership column.
	Unscoped bool

	SortBy        []query.Order
	SearchColumns []string
}

// Endpoint is the set of CRUD handlers produced for one `(table, column)`
// descriptor.
type Endpoint struct {
	gw     *Gateway
	table  string
	column string
	opts   Options
}

func NewEndpoint(gw *Gateway, table, column string, opts Options) *Endpoint {
	return &Endpoint{gw: gw, table: table, column: column, opts: opts}
}

// Mount registers the five CRUD routes for the resource under path.
func Mount(rg *gin.RouterGroup, path string, gw *Gateway, table, column string, opts Options) *Endpoint {
	e := NewEndpoint(gw, table, column, opts)

	grp := rg.Group(path)
	grp.GET("", e.List)
	grp.POST("", e.Create)
	grp.GET("/:id", e.GetOne)
	grp.PUT("/:id", e.Update)
	grp.DELETE("/:id", e.Delete)

	return e
}

func (e *Endpoint) List(c *gin.Context) {
	window, err := ParseWindow(c)

	if err != nil {
		e.fail(c, err)
		return
	}

	rows, err := e.gw.GetAll(c.Request.Context(), e.table, ListQuery{
		OrgID:         e.orgID(c),
		Modifier:      bind(c, e.opts.Modify),
		Sort:          e.opts.SortBy,
		Search:        c.Query("search"),
		SearchColumns: e.opts.SearchColumns,
		Window:        window,
	})

	if err != nil {
		e.fail(c, err)
		return
	}

	if window == nil {
		c.JSON(http.StatusOK, gin.H{"results": rows})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": rows,
		"links":   window.BuildLinks(c.Request.URL, len(rows)),
	})
}

func (e *Endpoint) GetOne(c *gin.Context) {
	row, err := e.gw.Get(c.Request.Context(), e.table, e.column, c.Param("id"), e.orgID(c), bind(c, e.opts.Modify))

	if err != nil {
		e.fail(c, err)
		return
	}

	handlers.RespondJSONWithETag(c, http.StatusOK, row)
}

func (e *Endpoint) Create(c *gin.Context) {
	payload, ok := e.bindPayload(c)

	if !ok {
		return
	}

	orgID := e.orgID(c)

	// The only place identity leaks into payload construction: scoped
	// creates get the caller's organization when the field is absent.
	if !e.opts.Unscoped && orgID != "" {
		if _, present := payload[OrgColumn]; !present {
			payload[OrgColumn] = orgID
		}
	}

	row, err := e.gw.Create(c.Request.Context(), e.table, e.column, payload, WriteOptions{
		Modify:    bind(c, e.opts.Modify),
		ResModify: bind(c, e.opts.ResModify),
		OrgID:     orgID,
	})

	if err != nil {
		e.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

func (e *Endpoint) Update(c *gin.Context) {
	payload, ok := e.bindPayload(c)

	if !ok {
		return
	}

	row, err := e.gw.Update(c.Request.Context(), e.table, e.column, c.Param("id"), payload, WriteOptions{
		Modify:    bind(c, e.opts.Modify),
		ResModify: bind(c, e.opts.ResModify),
		OrgID:     e.orgID(c),
	})

	if err != nil {
		e.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func (e *Endpoint) Delete(c *gin.Context) {
	id := c.Param("id")

	affected, err := e.gw.Delete(c.Request.Context(), e.table, e.column, id, e.orgID(c), bind(c, e.opts.Modify))

	if err != nil {
		e.fail(c, err)
		return
	}

	// Nothing removed: idempotent no-op.
	if affected == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": orDefault(e.opts.Messages.Deleted, "Deleted"),
		"id":      id,
	})
}

func (e *Endpoint) orgID(c *gin.Context) string {
	if e.opts.Unscoped {
		return ""
	}

	org, _ := middlewares.OrganizationFromContext(c)

	return org
}

func (e *Endpoint) bindPayload(c *gin.Context) (Row, bool) {
	var payload Row

	if !handlers.BindJSON(c, &payload) {
		return nil, false
	}

	if len(payload) == 0 {
		e.fail(c, &Error{
			Status:  http.StatusBadRequest,
			Code:    "invalid_fields",
			Message: orDefault(e.opts.Messages.BadRequest, "Wrong fields"),
		})
		return nil, false
	}

	return payload, true
}

func (e *Endpoint) fail(c *gin.Context, err error) {
	var apiErr *Error

	if !errors.As(err, &apiErr) {
		apiErr = Classify(c.Request.Context(), err, e.opts.Messages)
	}

	handlers.RespondError(c, apiErr.Status, apiErr.Code, apiErr.Message, nil)
}
