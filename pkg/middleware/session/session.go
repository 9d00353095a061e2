package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "session_id"

// Options controls the session cookie.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Middleware makes sure every request carries a browser session id. The id is
// read from the cookie when it parses as a UUID, otherwise a new one is issued.
func Middleware(opts Options) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "bq_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}

	return func(c *gin.Context) {
		id := ""
		if raw, err := c.Cookie(opts.CookieName); err == nil {
			if parsed, err := uuid.Parse(raw); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, id, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)

		c.Next()
	}
}

// Value returns the session id stored in the Gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
