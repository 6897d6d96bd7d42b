package jwt

import (
	"context"
	"net/http"
	"regexp"

	"mocrs/internal/pkg/logx"
	"mocrs/internal/pkg/metrics"
)

// Define Context Key for storing the Identity, preventing key collisions with other packages.
type contextKey string

const (
	// ContextIdentityKey is the key used to store the request Identity in the request Context.
	ContextIdentityKey contextKey = "auth_identity"
)

// bearerPattern matches "Bearer <token>" with a case-insensitive scheme and free whitespace around the token.
var bearerPattern = regexp.MustCompile(`(?i)^\s*bearer\s+(\S+)\s*$`)

// Identity is the per-request authentication result: either anonymous or an
// authenticated username with its admin flag. The zero value is anonymous.
type Identity struct {
	username      string
	isAdmin       bool
	authenticated bool
}

// Anonymous is the identity of a request without a usable session token.
var Anonymous = Identity{}

// Authenticated builds the identity of a verified session token holder.
func Authenticated(username string, isAdmin bool) Identity {
	return Identity{username: username, isAdmin: isAdmin, authenticated: true}
}

// IsAuthenticated reports whether the request carried a valid session token.
func (i Identity) IsAuthenticated() bool { return i.authenticated }

// Username returns the authenticated username, or "" when anonymous.
func (i Identity) Username() string { return i.username }

// IsAdmin reports whether the identity is an authenticated administrator.
func (i Identity) IsAdmin() bool { return i.authenticated && i.isAdmin }

// Authenticator turns an Authorization header into an Identity.
type Authenticator struct {
	codec   *Codec
	metrics *metrics.Metrics
}

// NewAuthenticator builds an Authenticator over codec. m may be nil.
func NewAuthenticator(codec *Codec, m *metrics.Metrics) *Authenticator {
	return &Authenticator{codec: codec, metrics: m}
}

// Authenticate never fails: a missing, malformed, forged or expired token yields Anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, authHeader string) Identity {
	if authHeader == "" {
		return Anonymous
	}

	match := bearerPattern.FindStringSubmatch(authHeader)
	if match == nil {
		return Anonymous
	}

	claims, err := a.codec.DecodeSession(match[1])
	if err != nil {
		logx.Ctx(ctx).Warn().Err(err).Msg("Invalid session token provided, treating as anonymous")
		return Anonymous
	}

	return Authenticated(claims.Username, claims.IsAdmin)
}

// Middleware derives the Identity once per request and stores it in the request
// Context. It never interrupts the request; rejection is left to the guards.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		a.metrics.Identity(identity.IsAuthenticated())

		ctx := context.WithValue(r.Context(), ContextIdentityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the Identity stored by Middleware, or Anonymous when none was stored.
func IdentityFromContext(ctx context.Context) Identity {
	identity, ok := ctx.Value(ContextIdentityKey).(Identity)
	if !ok {
		return Anonymous
	}
	return identity
}

// GetIdentity is a shorthand for IdentityFromContext(r.Context()).
func GetIdentity(r *http.Request) Identity {
	return IdentityFromContext(r.Context())
}
