package osrm

import (
	"encoding/json"
	"fmt"
)

type wireEnvelope struct {
	Code        *Status `json:"code"`
	Message     *string `json:"message"`
	DataVersion *string `json:"data_version"`
}

// readEnvelope decodes the status fields shared by all responses.
func readEnvelope(body []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return Envelope{}, err
	}
	if w.Code == nil {
		return Envelope{}, &ShapeError{What: "envelope", Detail: "missing code"}
	}
	return Envelope{Code: *w.Code, Message: w.Message, DataVersion: w.DataVersion}, nil
}

// envelopeError maps a non-Ok envelope to a protocol failure.
func envelopeError(service Service, env Envelope) *Error {
	e := &Error{Service: service, Kind: KindProtocol, Status: env.Code}
	if env.Message != nil {
		e.Message = *env.Message
	}
	return e
}

// payload is a response type that embeds Envelope.
type payload[T any] interface {
	*T
	setEnvelope(Envelope)
	envelope() Envelope
}

// Decode maps a response body for service onto its payload type. Only the code field decides
// between success and failure; the payload is decoded from the same object as the envelope.
func Decode[T any, P payload[T]](service Service, body []byte) (P, error) {
	env, err := readEnvelope(body)
	if err != nil {
		return nil, decodeError(service, "envelope", err)
	}
	if env.Code != StatusOk {
		return nil, envelopeError(service, env)
	}

	out := P(new(T))
	if err := json.Unmarshal(body, out); err != nil {
		return nil, decodeError(service, "payload", err)
	}
	out.setEnvelope(env)
	return out, nil
}

func decodeError(service Service, part string, err error) *Error {
	return &Error{
		Service: service,
		Kind:    KindDecode,
		Message: fmt.Sprintf("decoding %s", part),
		Err:     err,
	}
}
