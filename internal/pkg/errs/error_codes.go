/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
internally; at the HTTP boundary each code collapses to a status and a generic message.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrNoUpdateData indicates a partial update request carried no fields.
	ErrNoUpdateData = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrRouteNotFound indicates that no route matched the request path.
	ErrRouteNotFound = 1008

	// ErrMethodNotAllowed indicates that the route exists but not for this method.
	ErrMethodNotAllowed = 1009
)

// 2xxx: Room Business Logic Errors
const (
	// ErrRoomTypeInvalid indicates that an invalid room type was provided.
	ErrRoomTypeInvalid = 2101

	// ErrRoomNameInvalid indicates the room name is too short or too long.
	ErrRoomNameInvalid = 2102

	// ErrRoomNotFound indicates that the room being operated on does not exist.
	ErrRoomNotFound = 2103

	// ErrRoomDescriptionInvalid indicates the room description is too long.
	ErrRoomDescriptionInvalid = 2104

	// ErrRoomEmpty indicates a leave request for a room that is missing or has no participants.
	ErrRoomEmpty = 2105
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrUnauthorized is the single signal every authorization guard produces.
	ErrUnauthorized = 3001

	// ErrInvalidCredentials indicates the username/password pair did not verify.
	ErrInvalidCredentials = 3003

	// ErrInvalidMeetingToken indicates the session token embedded in a meeting token request failed verification.
	ErrInvalidMeetingToken = 3004

	// ErrInvalidUsername indicates the username does not satisfy the format rules.
	ErrInvalidUsername = 3101

	// ErrInvalidPassword indicates the password does not satisfy the length rules.
	ErrInvalidPassword = 3102

	// ErrInvalidEmail indicates the email address could not be parsed.
	ErrInvalidEmail = 3103

	// ErrInvalidName indicates a first or last name is empty or too long.
	ErrInvalidName = 3104

	// ErrUserAlreadyExists indicates the username is taken.
	ErrUserAlreadyExists = 3105

	// ErrUserNotFound indicates the target user does not exist.
	ErrUserNotFound = 3106

	// ErrInvalidAvatar indicates an avatar upload request or key was rejected.
	ErrInvalidAvatar = 3107

	// ErrAvatarNotUploaded indicates a confirmed avatar key has no object in the bucket.
	ErrAvatarNotUploaded = 3108
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates that avatar storage is not configured on this server.
	ErrStorageUnavailable = 5001

	// ErrFileStorageFailed indicates the object storage backend returned an error.
	ErrFileStorageFailed = 5002

	// ErrDatabaseUnavailable indicates the readiness probe could not reach PostgreSQL.
	ErrDatabaseUnavailable = 5003
)
