package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	session "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Session"
)

// SessionHeader lets non-browser clients carry the session without cookies
const SessionHeader = "X-Session-ID"

// ErrNoSession is returned when a handler runs outside the Session middleware
var ErrNoSession = errors.New("no session in request context")

// SessionMiddleware attaches the operator session to every request
type SessionMiddleware struct {
	store  *session.Store
	config Config
}

// Config holds middleware configuration
type Config struct {
	CookieName string
	MaxAge     int // seconds; zero makes a browser-session cookie
	Secure     bool
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{CookieName: "sda_session"}
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store *session.Store, config Config) *SessionMiddleware {
	if config.CookieName == "" {
		config.CookieName = DefaultConfig().CookieName
	}
	return &SessionMiddleware{store: store, config: config}
}

// extractSessionID gets the id from either header or cookie
func extractSessionID(r *http.Request, cookieName string) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Attach loads or starts the session and echoes its id in a cookie and a header
func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, created := m.store.GetOrCreate(extractSessionID(c.Request, m.config.CookieName))
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.config.CookieName, sess.ID, m.config.MaxAge, "/", "", m.config.Secure, true)
		}
		c.Header(SessionHeader, sess.ID)
		c.Set(string(SessionContextKey), sess)
		c.Next()
	}
}

// GetSessionFromGinContext returns the session set by Attach
func GetSessionFromGinContext(c *gin.Context) (*session.Session, error) {
	v, ok := c.Get(string(SessionContextKey))
	if !ok {
		return nil, ErrNoSession
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}
