/*
Package room defines the study/meeting room records and the rules every room must satisfy.
*/
package room

import (
	"strings"
	"unicode/utf8"

	"mocrs/internal/pkg/errs"
)

// Type is the kind of activity a room hosts.
type Type string

const (
	TypeMeeting Type = "meeting"
	TypeStudy   Type = "study"
	TypeFocus   Type = "focus"
	TypeChat    Type = "chat"
)

// Valid reports whether t is one of the supported room types.
func (t Type) Valid() bool {
	switch t {
	case TypeMeeting, TypeStudy, TypeFocus, TypeChat:
		return true
	}
	return false
}

const (
	nameMinLen        = 3
	nameMaxLen        = 150
	descriptionMaxLen = 250
)

// Room is a persisted room as returned to clients.
type Room struct {
	ID           int64  `json:"id"`
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RoomType     Type   `json:"roomType"`
	IsPrivate    bool   `json:"isPrivate"`
	CreatorID    int64  `json:"creatorId"`
	Participants int    `json:"participants"`
}

// NewRoom is the client input for creating a room. The creator is taken from the session.
type NewRoom struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	RoomType    Type   `json:"roomType"`
	IsPrivate   bool   `json:"isPrivate"`
}

// Validate checks the input and trims the name.
func (n *NewRoom) Validate() *errs.CustomError {
	n.Name = strings.TrimSpace(n.Name)

	if err := validateName(n.Name); err != nil {
		return err
	}
	if err := validateDescription(n.Description); err != nil {
		return err
	}
	if !n.RoomType.Valid() {
		return errs.NewError(errs.ErrRoomTypeInvalid, string(n.RoomType))
	}
	return nil
}

// Patch is a partial room update. Nil fields are left unchanged.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	RoomType    *Type   `json:"roomType"`
	IsPrivate   *bool   `json:"isPrivate"`
}

// Validate checks every field present in the patch.
func (p *Patch) Validate() *errs.CustomError {
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
		if err := validateName(trimmed); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.RoomType != nil && !p.RoomType.Valid() {
		return errs.NewError(errs.ErrRoomTypeInvalid, string(*p.RoomType))
	}
	return nil
}

// Fields returns the set fields keyed by their JSON name.
func (p *Patch) Fields() map[string]any {
	fields := make(map[string]any, 4)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.RoomType != nil {
		fields["roomType"] = string(*p.RoomType)
	}
	if p.IsPrivate != nil {
		fields["isPrivate"] = *p.IsPrivate
	}
	return fields
}

func validateName(name string) *errs.CustomError {
	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return errs.NewError(errs.ErrRoomNameInvalid)
	}
	return nil
}

func validateDescription(desc string) *errs.CustomError {
	if utf8.RuneCountInString(desc) > descriptionMaxLen {
		return errs.NewError(errs.ErrRoomDescriptionInvalid)
	}
	return nil
}
