package contentsafety

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

var (
	ErrEndpointRequired = errors.New("endpoint is required")

	// Failure kinds. Every failure returned by Detect or ShieldPrompt wraps exactly one of these.
	ErrTransport         = errors.New("transport failure")
	ErrRemote            = errors.New("remote error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrCanceled          = errors.New("request canceled")

	ErrNilResult = errors.New("nil result")
)

const (
	msgErrorIsNull    = "error is null, raw body included"
	msgResponseIsNull = "response is null, raw body included"
)

// DetectionFailure is returned by Detect and ShieldPrompt whenever a call does not produce a
// result.
// Kind tells you what went wrong and is one of ErrTransport, ErrRemote, ErrMalformedResponse
// or ErrCanceled.
//
// Because DetectionFailure implements Unwrap(), you can check the kind directly:
//
//	if errors.Is(err, contentsafety.ErrRemote) {
//		// The service rejected the request
//	}
//
//	// Or extract the failure to read the code, message and raw body
//	var failure *contentsafety.DetectionFailure
//	if errors.As(err, &failure) {
//		log.Printf("detect failed (%s): %s", failure.Code, failure.Message)
//	}
type DetectionFailure struct {
	// Kind is one of the ErrTransport, ErrRemote, ErrMalformedResponse or ErrCanceled sentinels.
	Kind error
	// Code is error.code from the service for ErrRemote, or the HTTP status text otherwise.
	Code string
	// Message is error.message from the service for ErrRemote, or a fixed description otherwise.
	Message string
	// StatusCode is the HTTP status of the response. Zero when no response was received. A
	// failure canceled between retries keeps the status of the last attempt.
	StatusCode int
	// RawBody is the full response body as received. Empty when no response was received.
	RawBody string
	// RequestID is the x-ms-client-request-id sent with the request.
	RequestID string
	// Remote is the decoded error payload. Only set for ErrRemote.
	Remote *DetectionError
	// Err is the underlying cause, if any (network error, JSON syntax error, context error).
	Err error
}

// Error returns a string representation of the failure.
func (f *DetectionFailure) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprint(f.Kind))
	for _, part := range []string{f.Code, f.Message} {
		if part != "" {
			b.WriteString(": ")
			b.WriteString(part)
		}
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

// Unwrap returns both the failure kind and the underlying cause.
func (f *DetectionFailure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// CanonicalCode maps the failure to a canonical status code. Canceled failures map to
// codes.Canceled even when they carry the status of an earlier attempt. Other failures that
// carry an HTTP status are mapped from it; the rest are mapped from their kind.
func (f *DetectionFailure) CanonicalCode() codes.Code {
	switch {
	case errors.Is(f.Kind, ErrCanceled):
		return codes.Canceled
	case f.StatusCode != 0:
		return codeFromHTTPStatus(f.StatusCode)
	case errors.Is(f.Kind, ErrTransport):
		return codes.Unavailable
	}
	return codes.Unknown
}

func codeFromHTTPStatus(status int) codes.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusNotImplemented:
		return codes.Unimplemented
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	}
	switch {
	case status >= 200 && status < 300:
		return codes.OK
	case status >= 500:
		return codes.Internal
	}
	return codes.Unknown
}

func remoteFailure(status int, body string, payload *DetectionError) *DetectionFailure {
	return &DetectionFailure{
		Kind:       ErrRemote,
		Code:       payload.Code,
		Message:    payload.Message,
		StatusCode: status,
		RawBody:    body,
		Remote:     payload,
	}
}

func malformedFailure(status int, body, message string, cause error) *DetectionFailure {
	return &DetectionFailure{
		Kind:       ErrMalformedResponse,
		Code:       http.StatusText(status),
		Message:    message,
		StatusCode: status,
		RawBody:    body,
		Err:        cause,
	}
}
