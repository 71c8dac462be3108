package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const VisitorCookieName = "concierge_visitor"

// VisitorKey is the gin context key holding the visitor id string.
const VisitorKey = "visitorID"

// VisitorMiddleware assigns every browser a stable visitor id cookie. A
// missing or unparsable cookie is replaced with a fresh id.
func VisitorMiddleware(maxAge time.Duration, secure bool) gin.HandlerFunc {
	maxAgeSeconds := int(maxAge / time.Second)
	return func(c *gin.Context) {
		var visitorID uuid.UUID
		cookie, err := c.Cookie(VisitorCookieName)
		if err == nil {
			visitorID, err = uuid.Parse(cookie)
		}
		if err != nil {
			visitorID = uuid.New()
		}
		// Refresh on every request so the cookie lives as long as the session.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(VisitorCookieName, visitorID.String(), maxAgeSeconds, "/", "", secure, true)

		c.Set(VisitorKey, visitorID.String())
		c.Next()
	}
}
