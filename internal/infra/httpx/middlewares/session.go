package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/swapwear/marketplace/internal/core/domain/entity"
	"github.com/swapwear/marketplace/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// HeaderXUserID and HeaderXUserRole carry the authenticated identity
// established by the auth edge in front of this gateway.
const (
	HeaderXUserID   = "X-User-Id"
	HeaderXUserRole = "X-User-Role"
)

// AttachSession mints a session capability from the identity headers and
// stores it in the request context. Requests without a usable identity get
// the anonymous session; handlers decide which operations require more.
func AttachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.Anonymous

		var id entity.ID
		if raw := r.Header.Get(HeaderXUserID); raw != "" {
			// The tolerant decoder maps garbage to the zero identity,
			// which IsAuthenticated rejects.
			_ = json.Unmarshal([]byte(raw), &id)
		}
		if id.Valid() {
			sess = session.New(id, session.Role(r.Header.Get(HeaderXUserRole)))
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFrom extracts the session established by AttachSession. Absent a
// middleware-set value it returns the anonymous session.
func SessionFrom(ctx context.Context) session.Session {
	if sess, ok := ctx.Value(sessionKey).(session.Session); ok {
		return sess
	}
	return session.Anonymous
}
