package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Decode failures. Every error returned by Codec.Decode wraps exactly one of these.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrNotYetValid      = errors.New("token is not valid yet")
)

// signingMethod is the only algorithm the codec signs with or accepts.
var signingMethod = jwt.SigningMethodHS256

// Codec signs and verifies compact JWTs with one process-wide shared secret.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewCodec builds a Codec. sessionTTL of zero issues session tokens without an exp claim.
func NewCodec(secret string, sessionTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
		parser:     &jwt.Parser{ValidMethods: []string{signingMethod.Alg()}},
	}
}

// Now returns the codec's clock reading.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Encode signs claims with HS256.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
}

// Decode verifies tokenString and fills claims. The algorithm is pinned to HS256;
// a token declaring any other algorithm is rejected as ErrInvalidSignature.
func (c *Codec) Decode(tokenString string, claims jwt.Claims) error {
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return classify(err)
	}
	if !token.Valid {
		return ErrInvalidSignature
	}
	return nil
}

// IssueSession signs a session token for username. isAdmin is always present in the claims.
func (c *Codec) IssueSession(username string, isAdmin bool) (string, error) {
	now := c.now()

	claims := &SessionClaims{
		StandardClaims: jwt.StandardClaims{IssuedAt: now.Unix()},
		Username:       username,
		IsAdmin:        isAdmin,
	}
	if c.sessionTTL > 0 {
		claims.ExpiresAt = now.Add(c.sessionTTL).Unix()
	}

	return c.Encode(claims)
}

// DecodeSession verifies a session token and returns its claims.
func (c *Codec) DecodeSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := c.Decode(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Username == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// classify maps a jwt-go validation error onto the codec's error set.
func classify(err error) error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return errors.Join(ErrMalformed, err)
	}

	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return errors.Join(ErrMalformed, err)
	case ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
		return errors.Join(ErrInvalidSignature, err)
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return errors.Join(ErrExpired, err)
	case ve.Errors&(jwt.ValidationErrorNotValidYet|jwt.ValidationErrorIssuedAt) != 0:
		return errors.Join(ErrNotYetValid, err)
	default:
		return errors.Join(ErrMalformed, err)
	}
}
