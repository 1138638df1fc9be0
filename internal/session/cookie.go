// internal/session/cookie.go
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"nutrifacil/internal/flow"
)

const CookieName = "nutrifacil_session"

// CookieCodec signs the session id stored in the browser.
type CookieCodec struct {
	secureCookie *securecookie.SecureCookie
	maxAge       time.Duration
}

// NewCookieCodec uses secret as the hash key. An empty secret gets a random
// one, so sessions do not outlive the process.
func NewCookieCodec(secret string, maxAge time.Duration) (*CookieCodec, error) {
	key := []byte(secret)
	if secret == "" {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generating session key")
		}
		slog.Warn("session_secret not set, using a random key for this process")
	}

	secureCookie := securecookie.New(key, nil)
	secureCookie.MaxAge(int(maxAge.Seconds()))

	return &CookieCodec{secureCookie: secureCookie, maxAge: maxAge}, nil
}

func (c *CookieCodec) Write(w http.ResponseWriter, id string) error {
	value, err := c.secureCookie.Encode(CookieName, id)
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.maxAge.Seconds()),
	})
	return nil
}

func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", fmt.Errorf("no session cookie: %w", err)
	}

	var id string
	if err := c.secureCookie.Decode(CookieName, cookie.Value, &id); err != nil {
		return "", fmt.Errorf("decoding session cookie: %w", err)
	}
	return id, nil
}

func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

type contextKey string

const sessionContextKey contextKey = "session"

// Middleware attaches the caller's session to the request context, creating
// one and setting the cookie when there is none or it expired.
func Middleware(store *Store, codec *CookieCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current *flow.Session
			if id, err := codec.Read(r); err == nil {
				current, _ = store.Get(id)
			}

			if current == nil {
				current = store.Create()
				if err := codec.Write(w, current.ID()); err != nil {
					slog.Error("writing session cookie", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), current)))
		})
	}
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *flow.Session {
	current, _ := ctx.Value(sessionContextKey).(*flow.Session)
	return current
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *flow.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}
