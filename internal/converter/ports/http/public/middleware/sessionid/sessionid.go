// Package sessionid binds every request to a session ID carried in a cookie.
package sessionid

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

type Cookie struct {
	name   string
	ttl    time.Duration
	secure bool
}

func New(name string, ttl time.Duration, secure bool) *Cookie {
	return &Cookie{
		name:   name,
		ttl:    ttl,
		secure: secure,
	}
}

// Handler reuses a well-formed session cookie or issues a fresh random ID.
// The cookie is re-sent on every response so its lifetime slides with use.
func (c *Cookie) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(c.name); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		http.SetCookie(w, c.cookie(id, int(c.ttl.Seconds())))

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Clear tells the browser to drop the session cookie.
func (c *Cookie) Clear(w http.ResponseWriter) {
	w.Header().Del("Set-Cookie")
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Cookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
