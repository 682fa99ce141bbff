package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "github.com/jsamuelsen/zapallo-backoffice/internal/app/context"
)

// RequestContext returns middleware that attaches a request-scoped fetch
// cache, so a page that needs the exchange list several times fetches it once.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(appctx.WithContext(ctx, appctx.New(ctx)))

		c.Next()
	}
}
