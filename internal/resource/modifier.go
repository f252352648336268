package resource

import (
	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/query"
)

// Modifier lets a resource configuration inject extra query construction
// (joins, filters, select narrowing) without the gateway knowing the
// resource's shape. Implementations must only build the query; execution
// stays with the gateway.
type Modifier interface {
	Apply(c *gin.Context, b *query.Builder) *query.Builder
}

// ModifierFunc adapts a plain function to the Modifier interface.
type ModifierFunc func(c *gin.Context, b *query.Builder) *query.Builder

func (f ModifierFunc) Apply(c *gin.Context, b *query.Builder) *query.Builder {
	return f(c, b)
}

// bind pre-binds the request context so the gateway only ever sees a
// one-argument transform.
func bind(c *gin.Context, m Modifier) func(*query.Builder) *query.Builder {
	if m == nil {
		return nil
	}

	return func(b *query.Builder) *query.Builder {
		return m.Apply(c, b)
	}
}
