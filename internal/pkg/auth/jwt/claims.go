package jwt

import "github.com/golang-jwt/jwt"

// SessionClaims is the claim-set of a session token, proving a user's login to this API.
// Wire format: {"username": string, "isAdmin": bool, "iat": int[, "exp": int]}.
type SessionClaims struct {
	// StandardClaims supplies iat (always set) and exp (only when a session TTL is configured).
	jwt.StandardClaims

	// Username identifies the account the token was issued to.
	Username string `json:"username"`

	// IsAdmin is always serialized; a missing flag must never be read as a privilege.
	IsAdmin bool `json:"isAdmin"`
}

// MeetingClaims is the claim-set handed to the embedded video-conferencing widget.
// Wire format: {"aud","iss","sub","room","context":{"user":{...}},"moderator","iat","exp","nbf"}.
type MeetingClaims struct {
	jwt.StandardClaims

	// Room selects which meeting rooms the token grants; always "*".
	Room string `json:"room"`

	// Context carries the display identity shown inside the meeting.
	Context MeetingContext `json:"context"`

	// Moderator grants meeting moderation rights.
	Moderator bool `json:"moderator"`
}

// MeetingContext wraps the meeting user as the widget expects it.
type MeetingContext struct {
	User MeetingUser `json:"user"`
}

// MeetingUser is the participant identity displayed by the widget.
type MeetingUser struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
	Role        string `json:"role"`
}
