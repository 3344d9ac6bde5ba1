package contentsafety

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestDetectionFailure(t *testing.T) {
	t.Run("error message", func(t *testing.T) {
		failure := &DetectionFailure{Kind: ErrRemote, Code: "InvalidRequest", Message: "bad input"}
		assert.Equal(t, "remote error: InvalidRequest: bad input", failure.Error())

		failure = &DetectionFailure{Kind: ErrTransport, Err: io.ErrUnexpectedEOF}
		assert.Equal(t, "transport failure: unexpected EOF", failure.Error())
	})

	t.Run("errors.Is with kind and cause", func(t *testing.T) {
		failure := &DetectionFailure{Kind: ErrCanceled, Err: context.Canceled}

		assert.True(t, errors.Is(failure, ErrCanceled))
		assert.True(t, errors.Is(failure, context.Canceled))
		assert.False(t, errors.Is(failure, ErrTransport))
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		original := &DetectionFailure{Kind: ErrMalformedResponse, StatusCode: 500, RawBody: "oops"}
		wrapped := errors.Join(errors.New("context"), original)

		var extracted *DetectionFailure
		assert.True(t, errors.As(wrapped, &extracted))
		assert.Equal(t, "oops", extracted.RawBody)
		assert.True(t, errors.Is(wrapped, ErrMalformedResponse))
	})
}

func TestCanonicalCode(t *testing.T) {
	tests := []struct {
		name    string
		failure *DetectionFailure
		want    codes.Code
	}{
		{"bad request", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusBadRequest}, codes.InvalidArgument},
		{"unauthorized", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusUnauthorized}, codes.Unauthenticated},
		{"forbidden", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusForbidden}, codes.PermissionDenied},
		{"not found", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusNotFound}, codes.NotFound},
		{"throttled", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusTooManyRequests}, codes.ResourceExhausted},
		{"unavailable", &DetectionFailure{Kind: ErrMalformedResponse, StatusCode: http.StatusServiceUnavailable}, codes.Unavailable},
		{"gateway timeout", &DetectionFailure{Kind: ErrMalformedResponse, StatusCode: http.StatusGatewayTimeout}, codes.DeadlineExceeded},
		{"other 5xx", &DetectionFailure{Kind: ErrMalformedResponse, StatusCode: http.StatusBadGateway}, codes.Internal},
		{"malformed success", &DetectionFailure{Kind: ErrMalformedResponse, StatusCode: http.StatusOK}, codes.OK},
		{"other 4xx", &DetectionFailure{Kind: ErrRemote, StatusCode: http.StatusTeapot}, codes.Unknown},
		{"transport", &DetectionFailure{Kind: ErrTransport}, codes.Unavailable},
		{"canceled", &DetectionFailure{Kind: ErrCanceled}, codes.Canceled},
		{"canceled after unavailable attempt", &DetectionFailure{Kind: ErrCanceled, StatusCode: http.StatusServiceUnavailable}, codes.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.failure.CanonicalCode())
		})
	}
}

func TestInterpretResponse(t *testing.T) {
	t.Run("absent and null keys decode the same", func(t *testing.T) {
		_, absent := interpretResponse(http.StatusBadRequest, `{"error":{"code":"X","message":"m"}}`)
		_, null := interpretResponse(http.StatusBadRequest, `{"error":{"code":"X","message":"m","target":null,"details":null,"innererror":null}}`)

		var a, n *DetectionFailure
		assert.ErrorAs(t, absent, &a)
		assert.ErrorAs(t, null, &n)
		assert.Equal(t, a.Remote, n.Remote)
	})

	t.Run("status text used as code for malformed failures", func(t *testing.T) {
		_, err := interpretResponse(http.StatusServiceUnavailable, "")
		var failure *DetectionFailure
		assert.ErrorAs(t, err, &failure)
		assert.Equal(t, "Service Unavailable", failure.Code)
		assert.Equal(t, msgErrorIsNull, failure.Message)
		assert.Error(t, failure.Err, "the decode error is kept as the cause")
	})
	t.Run("member names must match exactly", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   string
		}{
			{"upper-case analysis key", http.StatusOK, `{"PROTECTEDMATERIALANALYSIS":{"detected":true,"codeCitations":[]}}`, msgResponseIsNull},
			{"title-case analysis key", http.StatusOK, `{"ProtectedMaterialAnalysis":{"detected":false}}`, msgResponseIsNull},
			{"upper-case error key", http.StatusBadRequest, `{"ERROR":{"code":"X","message":"m"}}`, msgErrorIsNull},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := interpretResponse(tt.status, tt.body)
				assert.Nil(t, result)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				var failure *DetectionFailure
				assert.ErrorAs(t, err, &failure)
				assert.Equal(t, tt.want, failure.Message)
				assert.Equal(t, tt.body, failure.RawBody)
			})
		}
	})
}
