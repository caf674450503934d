package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillbase/blogserver/internal/constants"
)

// callerID reads the authenticated user's ID set by the JWT middleware.
func callerID(c *gin.Context) (uint, bool) {
	val, exists := c.Get(string(constants.CtxKeyUserID))
	if !exists {
		return 0, false
	}

	id, ok := val.(uint)
	return id, ok
}

// callerAuthority reads the authenticated user's authority.
func callerAuthority(c *gin.Context) string {
	return c.GetString(string(constants.CtxKeyAuthority))
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// pageTotal computes the number of pages for a listing response.
func pageTotal(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size != 0 {
		pages++
	}
	return pages
}
