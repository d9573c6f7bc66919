// Package apperr defines the one failure shape that crosses every
// boundary in the bridge: {name, message, part, tag, statusCode}.
// Raw storage or transport errors never leave a service un-wrapped.
package apperr

import (
	"errors"
	"fmt"
)

// Error names.
const (
	NameValidation = "ValidationError"
	NamePermission = "PermissionError"
	NameServer     = "ServerError"
)

// Operation parts. Each mutation carries a fixed part tag so the UI can
// attribute a failure to the operation that produced it.
const (
	PartCreateMember = "CREATEMEMBER"
	PartUpdateMember = "UPDATEMEMBER"
	PartDeleteMember = "DELETEMEMBER"
	PartCreateFriend = "CREATEFRIEND"
	PartUpdateFriend = "UPDATEFRIEND"
	PartDeleteFriend = "DELETEFRIEND"
	PartHandler      = "HANDLER"
	PartTransport    = "TRANSPORT"
)

// Fine-grained machine reasons.
const (
	TagPermissionDenied  = "PERMISSION_DENIED"
	TagPermissionTooHigh = "PERMISSION_TOO_HIGH"
	TagFriendExists      = "FRIEND_EXISTS"
	TagMemberExists      = "MEMBER_EXISTS"
	TagNotFound          = "NOT_FOUND"
	TagDataInvalid       = "DATA_INVALID"
	TagExceptionError    = "EXCEPTION_ERROR"
	TagDisconnected      = "DISCONNECTED"
	TagTimeout           = "TIMEOUT"
)

// Envelope is the standardized failure object. It implements error so it
// can travel through ordinary return paths.
type Envelope struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Part       string `json:"part"`
	Tag        string `json:"tag"`
	StatusCode int    `json:"statusCode"`
}

func (e *Envelope) Error() string {
	return fmt.Sprintf("%s [%s/%s]: %s", e.Name, e.Part, e.Tag, e.Message)
}

func Validation(part, tag, message string) *Envelope {
	return &Envelope{Name: NameValidation, Message: message, Part: part, Tag: tag, StatusCode: 400}
}

func Permission(part, tag, message string) *Envelope {
	return &Envelope{Name: NamePermission, Message: message, Part: part, Tag: tag, StatusCode: 403}
}

func Server(part, tag, message string) *Envelope {
	return &Envelope{Name: NameServer, Message: message, Part: part, Tag: tag, StatusCode: 500}
}

// From extracts an Envelope if err already is one.
func From(err error) (*Envelope, bool) {
	var e *Envelope
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Coerce is the boundary combinator: an error that is already an Envelope
// passes through untouched, anything else becomes a generic ServerError
// carrying the original message. Every observable failure therefore has
// the same shape.
func Coerce(part string, err error) *Envelope {
	if err == nil {
		return nil
	}
	if e, ok := From(err); ok {
		return e
	}
	return Server(part, TagExceptionError, fmt.Sprintf("an unexpected error occurred: %s", err.Error()))
}
