package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
)

// EnvelopeVersion is the version stamped on every response body.
const EnvelopeVersion = 1

// Envelope is the success response wrapper.
type Envelope struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the error response wrapper. Error carries the human
// readable message; Code, Message and Details mirror APIError.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps handler output in the response envelope.
// It is installed as a huma transformer so handlers return bare bodies.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if de, ok := v.(*domainerrors.Error); ok {
		v = fromDomainError(de)
	}

	switch body := v.(type) {
	case *APIError:
		return ErrorEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Message,
			Code:    body.Code,
			Message: body.Message,
			Details: body.Details,
		}, nil
	case *huma.ErrorModel:
		return ErrorEnvelope{
			Version: EnvelopeVersion,
			Error:   body.Detail,
			Code:    statusToCode(body.Status),
			Message: body.Detail,
			Details: body.Errors,
		}, nil
	case Envelope, ErrorEnvelope:
		return body, nil
	}

	code, err := strconv.Atoi(status)
	if err == nil && code >= 400 {
		return ErrorEnvelope{Version: EnvelopeVersion, Error: "request failed", Code: statusToCode(code), Details: v}, nil
	}

	return Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
}
