package modules

import "github.com/gin-gonic/gin"

// Routes registers handlers under /api. Implementations attach the access
// guards for each route before the handlers run.
type Routes interface {
	GET(path string, h ...gin.HandlerFunc)
	POST(path string, h ...gin.HandlerFunc)
	PUT(path string, h ...gin.HandlerFunc)
	PATCH(path string, h ...gin.HandlerFunc)
}
