/*
Package meeting mints the signed tokens consumed by the embedded video-conferencing widget.

A meeting token has its own claim shape and audience and is unrelated to the session
token, but it is signed by the same codec and shared secret.
*/
package meeting

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt"

	"mocrs/internal/pkg/auth/jwt"
	"mocrs/internal/pkg/logx"
)

const (
	// Audience is the fixed aud claim the widget expects.
	Audience = "jitsi"

	// AnyRoom grants the token for every meeting room.
	AnyRoom = "*"

	// TokenLifetime is the distance between iat and exp.
	TokenLifetime = 24 * time.Hour

	// ClockSkew is the distance between nbf and iat.
	ClockSkew = 10 * time.Second

	// GuestName is the display name used when no verified requester is present.
	GuestName = "Guest"

	affiliationMember = "member"
	roleParticipant   = "participant"
)

// ErrInvalidToken is returned when a requester embeds a session token that does not verify.
var ErrInvalidToken = errors.New("embedded session token is invalid")

// Requester is the optional identity sent along with a meeting token request.
type Requester struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`

	// Token is a previously issued session token. Empty means the guest path.
	Token string `json:"token"`
}

// Config identifies this application to the meeting service.
type Config struct {
	AppID     string
	AppDomain string
}

// Minter builds and signs meeting tokens.
type Minter struct {
	codec *jwt.Codec
	cfg   Config
}

// NewMinter returns a Minter signing with codec.
func NewMinter(codec *jwt.Codec, cfg Config) *Minter {
	return &Minter{codec: codec, cfg: cfg}
}

// Mint issues a meeting token for requester.
//
// A nil requester, or one without an embedded token, is minted as the fixed guest
// participant without moderator rights. An embedded token that verifies makes the
// requester a moderator, whatever its isAdmin flag says. An embedded token that does
// not verify fails with ErrInvalidToken and nothing is minted.
func (m *Minter) Mint(requester *Requester) (string, *jwt.MeetingClaims, error) {
	user := jwt.MeetingUser{
		Name:        GuestName,
		Email:       "",
		Affiliation: affiliationMember,
		Role:        roleParticipant,
	}
	moderator := false

	if requester != nil && requester.Token != "" {
		session, err := m.codec.DecodeSession(requester.Token)
		if err != nil {
			logx.Warn("Meeting token request carried an invalid session token", "error", err.Error())
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}

		user.Name = displayName(requester, session)
		user.Email = requester.Email
		moderator = true

		logx.Debug("Minting moderator meeting token", "username", session.Username)
	} else {
		logx.Debug("No session token provided, minting guest meeting token")
	}

	now := m.codec.Now()
	claims := &jwt.MeetingClaims{
		StandardClaims: gojwt.StandardClaims{
			Audience:  Audience,
			Issuer:    m.cfg.AppID,
			Subject:   m.cfg.AppDomain,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenLifetime).Unix(),
			NotBefore: now.Add(-ClockSkew).Unix(),
		},
		Room:      AnyRoom,
		Context:   jwt.MeetingContext{User: user},
		Moderator: moderator,
	}

	token, err := m.codec.Encode(claims)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign meeting token: %w", err)
	}

	return token, claims, nil
}

// displayName prefers the requester's first name, then the verified username.
func displayName(requester *Requester, session *jwt.SessionClaims) string {
	if requester.FirstName != "" {
		return requester.FirstName
	}
	if session.Username != "" {
		return session.Username
	}
	return GuestName
}
