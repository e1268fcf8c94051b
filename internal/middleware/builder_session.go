package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// BuilderCookie names the cookie that ties a browser to its workspace
	BuilderCookie = "burger_session"
	// BuilderHeader lets non-browser clients pick their workspace
	BuilderHeader = "X-Builder-Session"

	builderKey = "builderSession"
)

// BuilderSession makes sure every request carries a workspace id, issuing
// a new cookie when none is presented.
func BuilderSession(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(BuilderHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
		if id == "" {
			if cookie, err := c.Cookie(BuilderCookie); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					id = cookie
				}
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(BuilderCookie, id, 0, "/", "", secure, true)
		}

		c.Set(builderKey, id)
		c.Header(BuilderHeader, id)
		c.Next()
	}
}

// BuilderSessionFrom returns the workspace id set by BuilderSession
func BuilderSessionFrom(c *gin.Context) string {
	return c.GetString(builderKey)
}
