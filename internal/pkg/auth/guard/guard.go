/*
Package guard implements the authorization guards that gate routes on the
request Identity produced by the session authenticator.

Each guard is a pure decision over an immutable Identity. The HTTP middlewares
wrap those decisions and turn a rejection into a generic 401 Unauthorized.
*/
package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/errs"
	"mocrs/internal/pkg/metrics"
	"mocrs/internal/pkg/resp"
)

// Guard names, used as the metrics label.
const (
	NameLoggedIn    = "logged_in"
	NameAdmin       = "admin"
	NameSelfOrAdmin = "self_or_admin"
	NameRoomOwner   = "room_owner"
)

// LoggedIn proceeds iff identity is authenticated.
func LoggedIn(identity jwt.Identity) bool {
	return identity.IsAuthenticated()
}

// Admin proceeds iff identity is an authenticated administrator.
func Admin(identity jwt.Identity) bool {
	return identity.IsAuthenticated() && identity.IsAdmin()
}

// SelfOrAdmin proceeds iff identity is an administrator or is authenticated as
// exactly target. The username comparison is byte-for-byte.
func SelfOrAdmin(identity jwt.Identity, target string) bool {
	if !identity.IsAuthenticated() {
		return false
	}
	return identity.IsAdmin() || identity.Username() == target
}

// Guards builds the route middlewares. Its zero value works without metrics.
type Guards struct {
	metrics *metrics.Metrics
}

// New returns Guards that report rejections to m. m may be nil.
func New(m *metrics.Metrics) *Guards {
	return &Guards{metrics: m}
}

func (g *Guards) reject(w http.ResponseWriter, r *http.Request, name string) {
	g.metrics.GuardRejected(name)
	resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
}

// RequireLoggedIn rejects anonymous requests.
func (g *Guards) RequireLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !LoggedIn(jwt.GetIdentity(r)) {
			g.reject(w, r, NameLoggedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects every request that is not from an administrator.
func (g *Guards) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Admin(jwt.GetIdentity(r)) {
			g.reject(w, r, NameAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin compares the identity against the chi URL parameter param.
func (g *Guards) RequireSelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !SelfOrAdmin(jwt.GetIdentity(r), chi.URLParam(r, param)) {
				g.reject(w, r, NameSelfOrAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
