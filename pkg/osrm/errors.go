package osrm

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is against any *Error.
var (
	// ErrTransport indicates the call failed before a body could be interpreted.
	ErrTransport = errors.New("osrm transport failure")
	// ErrProtocol indicates the service answered with a status other than Ok.
	ErrProtocol = errors.New("osrm protocol failure")
	// ErrDecode indicates the body did not have the shape the protocol defines.
	ErrDecode = errors.New("osrm decode failure")
	// ErrNotImplemented indicates a request the client refuses to send.
	ErrNotImplemented = errors.New("osrm request not implemented")
)

// Status is the code discriminant of a response envelope.
type Status string

const (
	StatusOk             Status = "Ok"
	StatusInvalidURL     Status = "InvalidUrl"
	StatusInvalidService Status = "InvalidService"
	StatusInvalidVersion Status = "InvalidVersion"
	StatusInvalidOptions Status = "InvalidOptions"
	StatusInvalidQuery   Status = "InvalidQuery"
	StatusInvalidValue   Status = "InvalidValue"
	StatusNoSegment      Status = "NoSegment"
	StatusTooBig         Status = "TooBig"
	StatusNoRoute        Status = "NoRoute"
	StatusNoTable        Status = "NoTable"
	StatusNoMatch        Status = "NoMatch"
	StatusNoTrips        Status = "NoTrips"
	// StatusNotImplemented is produced locally and never appears on the wire.
	StatusNotImplemented Status = "NotImplemented"
)

var statusDescriptions = map[Status]string{
	StatusOk:             "everything went ok",
	StatusInvalidURL:     "url string is invalid",
	StatusInvalidService: "service name is invalid",
	StatusInvalidVersion: "version is not found",
	StatusInvalidOptions: "options are invalid",
	StatusInvalidQuery:   "the query string is syntactically malformed",
	StatusInvalidValue:   "the successfully parsed query parameters are invalid",
	StatusNoSegment:      "one of the supplied input coordinates could not snap to street segment",
	StatusTooBig:         "the request size violates one of the service specific request size restrictions",
	StatusNoRoute:        "no route found",
	StatusNoTable:        "no route found between any source and destination",
	StatusNoMatch:        "no matchings found",
	StatusNoTrips:        "no trips found because input coordinates are not connected",
	StatusNotImplemented: "this request is not supported",
}

// Description returns a fixed human-readable phrase for the status, for logs only.
func (s Status) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return "unknown status"
}

// Known reports whether the status is one of the documented codes.
func (s Status) Known() bool {
	_, ok := statusDescriptions[s]
	return ok
}

func (s Status) String() string { return string(s) }

// ErrorKind separates the three ways a call can fail.
type ErrorKind int

const (
	// KindTransport: the HTTP call itself failed.
	KindTransport ErrorKind = iota + 1
	// KindProtocol: the envelope carried a status other than Ok.
	KindProtocol
	// KindDecode: the body did not match the expected JSON shape.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Service Service   // Service that was called
	Kind    ErrorKind // Failure category
	Status  Status    // Envelope status, set for protocol failures
	Message string    // Message from the service or a local explanation
	Err     error     // Underlying error, for transport and decode failures
}

func (e *Error) Error() string {
	prefix := "osrm " + string(e.Service)
	switch e.Kind {
	case KindProtocol:
		msg := fmt.Sprintf("%s: %s (%s)", prefix, e.Status, e.Status.Description())
		if e.Message != "" {
			msg += ": " + e.Message
		}
		return msg
	default:
		msg := prefix + ": " + e.Kind.String() + " failure"
		if e.Message != "" {
			msg += ": " + e.Message
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrDecode:
		return e.Kind == KindDecode
	case ErrNotImplemented:
		return e.Kind == KindProtocol && e.Status == StatusNotImplemented
	}
	return false
}

// StatusOf extracts the envelope status of a protocol failure.
func StatusOf(err error) (Status, bool) {
	var osrmErr *Error
	if errors.As(err, &osrmErr) && osrmErr.Kind == KindProtocol {
		return osrmErr.Status, true
	}
	return "", false
}

// ShapeError reports a JSON value that matches none of the shapes allowed at that position.
type ShapeError struct {
	What   string
	Detail string
}

func (e *ShapeError) Error() string {
	return "unexpected " + e.What + " shape: " + e.Detail
}
