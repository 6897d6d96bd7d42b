/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, the single
place where an error kind is bound to its HTTP status.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Bad Request", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Content-Type must be application/json", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data", Status: http.StatusBadRequest},
	ErrNoUpdateData:          {Code: ErrNoUpdateData, Message: "No data provided for update", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests, please try again later", Status: http.StatusTooManyRequests},
	ErrRouteNotFound:         {Code: ErrRouteNotFound, Message: "Not Found", Status: http.StatusNotFound},
	ErrMethodNotAllowed:      {Code: ErrMethodNotAllowed, Message: "Method Not Allowed", Status: http.StatusMethodNotAllowed},

	// 2xxx: Room Business Logic Errors
	ErrRoomTypeInvalid:        {Code: ErrRoomTypeInvalid, Message: "Invalid room type: %s", Status: http.StatusBadRequest},
	ErrRoomNameInvalid:        {Code: ErrRoomNameInvalid, Message: "Invalid room name", Status: http.StatusBadRequest},
	ErrRoomNotFound:           {Code: ErrRoomNotFound, Message: "No room: %s", Status: http.StatusNotFound},
	ErrRoomDescriptionInvalid: {Code: ErrRoomDescriptionInvalid, Message: "Invalid room description", Status: http.StatusBadRequest},
	ErrRoomEmpty:              {Code: ErrRoomEmpty, Message: "No room: %s or no participants to leave", Status: http.StatusNotFound},

	// 3xxx: User, Session, and Security Errors
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Unauthorized", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Invalid username/password", Status: http.StatusUnauthorized},
	ErrInvalidMeetingToken: {Code: ErrInvalidMeetingToken, Message: "Invalid token", Status: http.StatusUnauthorized},
	ErrInvalidUsername:     {Code: ErrInvalidUsername, Message: "Invalid username", Status: http.StatusBadRequest},
	ErrInvalidPassword:     {Code: ErrInvalidPassword, Message: "Invalid password", Status: http.StatusBadRequest},
	ErrInvalidEmail:        {Code: ErrInvalidEmail, Message: "Invalid email", Status: http.StatusBadRequest},
	ErrInvalidName:         {Code: ErrInvalidName, Message: "Invalid %s", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:   {Code: ErrUserAlreadyExists, Message: "Duplicate username: %s", Status: http.StatusBadRequest},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "No user: %s", Status: http.StatusNotFound},
	ErrInvalidAvatar:       {Code: ErrInvalidAvatar, Message: "Invalid avatar", Status: http.StatusBadRequest},
	ErrAvatarNotUploaded:   {Code: ErrAvatarNotUploaded, Message: "Avatar has not been uploaded", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown:             {Code: ErrUnknown, Message: "Internal Server Error", Status: http.StatusInternalServerError},
	ErrStorageUnavailable:  {Code: ErrStorageUnavailable, Message: "Avatar storage is not configured", Status: http.StatusServiceUnavailable},
	ErrFileStorageFailed:   {Code: ErrFileStorageFailed, Message: "File storage failed, please try again", Status: http.StatusInternalServerError},
	ErrDatabaseUnavailable: {Code: ErrDatabaseUnavailable, Message: "Database unavailable", Status: http.StatusServiceUnavailable},
}
