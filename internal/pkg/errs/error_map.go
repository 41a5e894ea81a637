/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
protocol replies, HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:     {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "You are sending messages too fast. Please slow down.", Status: http.StatusTooManyRequests},

	// 2xxx: Name, Room and Command Errors
	ErrNameInUse:         {Code: ErrNameInUse, Message: "Sorry, that name is taken."},
	ErrNameInvalid:       {Code: ErrNameInvalid, Message: "Names must be 1-32 characters, cannot start with '/' and cannot contain control characters."},
	ErrRoomNotFound:      {Code: ErrRoomNotFound, Message: "Room not found.", Status: http.StatusNotFound},
	ErrRoomAlreadyExists: {Code: ErrRoomAlreadyExists, Message: "Room name already exists."},
	ErrRoomNameInvalid:   {Code: ErrRoomNameInvalid, Message: "Room names must be 1-64 characters and cannot contain control characters."},
	ErrAlreadyInRoom:     {Code: ErrAlreadyInRoom, Message: "You are already in this room."},
	ErrMalformedCommand:  {Code: ErrMalformedCommand, Message: "Missing argument. Usage: %s"},
	ErrUnknownCommand:    {Code: ErrUnknownCommand, Message: "Unknown command: %s"},

	// 3xxx: Connection Errors
	ErrTransport:     {Code: ErrTransport, Message: "Connection error."},
	ErrServerClosing: {Code: ErrServerClosing, Message: "Server is shutting down.", Status: http.StatusServiceUnavailable},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrInternalState: {Code: ErrInternalState, Message: "Internal server error.", Status: http.StatusInternalServerError},
}
