package size

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/floworx/floworx/engine/infra/server/router"
)

// BodySizeLimiter caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are rejected up front; streamed bodies fail on read
// with *http.MaxBytesError. A non-positive limit disables the check.
func BodySizeLimiter(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			router.RespondWithError(
				c,
				http.StatusRequestEntityTooLarge,
				router.NewServerError(router.ErrPayloadTooLargeCode, router.ErrBodyTooLarge.Error()),
			)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
