/*
Package errs provides custom error types and application-level error code constants.

These error codes identify protocol and system errors both inside the server and in the
text replies and JSON responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request or message rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Name, Room and Command Errors
const (
	// ErrNameInUse indicates that the requested display name is held by another session.
	ErrNameInUse = 2101

	// ErrNameInvalid indicates that the requested display name is empty, too long or malformed.
	ErrNameInvalid = 2102

	// ErrRoomNotFound indicates that the room being operated on does not exist.
	ErrRoomNotFound = 2201

	// ErrRoomAlreadyExists indicates that a rename target is already used by a different room.
	ErrRoomAlreadyExists = 2202

	// ErrRoomNameInvalid indicates that the room name is empty, too long or malformed.
	ErrRoomNameInvalid = 2203

	// ErrAlreadyInRoom indicates that the user is already a member of the target room.
	ErrAlreadyInRoom = 2204

	// ErrMalformedCommand indicates that a command is missing a required argument.
	ErrMalformedCommand = 2301

	// ErrUnknownCommand indicates that a slash command verb is not recognized.
	ErrUnknownCommand = 2302
)

// 3xxx: Connection Errors. These end the affected session.
const (
	// ErrTransport indicates an I/O failure on the client connection.
	ErrTransport = 3001

	// ErrServerClosing indicates that the server no longer accepts sessions or joins.
	ErrServerClosing = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrInternalState indicates that a registry invariant was found broken.
	ErrInternalState = 5001
)
