/*
Package user contains the account records of the application and the input rules
applied before anything reaches the credential store.

Validation lives here rather than in the handlers so that register, admin-create and
update share exactly one definition of a well-formed account.
*/
package user

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"mocrs/internal/app/room"
	"mocrs/internal/pkg/errs"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,25}$`)

const (
	passwordMinLen = 5
	passwordMaxLen = 50
	nameMaxLen     = 30
	emailMaxLen    = 60
)

// User is an account as exposed to clients. The password hash never leaves the store.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	AvatarKey string `json:"avatarKey,omitempty"`

	// Rooms holds the rooms the user created. Only filled by detail lookups.
	Rooms []room.Room `json:"rooms,omitempty"`
}

// Credentials pairs a user with its stored bcrypt hash.
type Credentials struct {
	User
	PasswordHash string
}

// NewUser is the input for creating an account.
type NewUser struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Validate checks every field of n.
func (n *NewUser) Validate() *errs.CustomError {
	n.Email = strings.TrimSpace(n.Email)

	if err := ValidateUsername(n.Username); err != nil {
		return err
	}
	if err := ValidatePassword(n.Password); err != nil {
		return err
	}
	if err := validateName(n.FirstName, "firstName"); err != nil {
		return err
	}
	if err := validateName(n.LastName, "lastName"); err != nil {
		return err
	}
	return ValidateEmail(n.Email)
}

// Patch is a partial account update. Nil fields are left unchanged.
type Patch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
	Email     *string `json:"email"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// Validate checks every field present in the patch.
func (p *Patch) Validate() *errs.CustomError {
	if p.FirstName != nil {
		if err := validateName(*p.FirstName, "firstName"); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := validateName(*p.LastName, "lastName"); err != nil {
			return err
		}
	}
	if p.Password != nil {
		if err := ValidatePassword(*p.Password); err != nil {
			return err
		}
	}
	if p.Email != nil {
		trimmed := strings.TrimSpace(*p.Email)
		p.Email = &trimmed
		if err := ValidateEmail(trimmed); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the set fields keyed by their JSON name. The password is
// returned as given; the caller is expected to replace it with its hash.
func (p *Patch) Fields() map[string]any {
	fields := make(map[string]any, 5)
	if p.FirstName != nil {
		fields["firstName"] = *p.FirstName
	}
	if p.LastName != nil {
		fields["lastName"] = *p.LastName
	}
	if p.Password != nil {
		fields["password"] = *p.Password
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.IsAdmin != nil {
		fields["isAdmin"] = *p.IsAdmin
	}
	return fields
}

// ValidateUsername checks the allowed alphabet and length.
func ValidateUsername(username string) *errs.CustomError {
	if !usernameRegex.MatchString(username) {
		return errs.NewError(errs.ErrInvalidUsername)
	}
	return nil
}

// ValidatePassword checks the password length in runes.
func ValidatePassword(password string) *errs.CustomError {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLen || n > passwordMaxLen {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}

// ValidateEmail accepts a bare RFC 5322 address of at most 60 characters.
func ValidateEmail(email string) *errs.CustomError {
	if email == "" || utf8.RuneCountInString(email) > emailMaxLen {
		return errs.NewError(errs.ErrInvalidEmail)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errs.NewError(errs.ErrInvalidEmail)
	}
	return nil
}

func validateName(name, field string) *errs.CustomError {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || utf8.RuneCountInString(name) > nameMaxLen {
		return errs.NewError(errs.ErrInvalidName, field)
	}
	return nil
}
