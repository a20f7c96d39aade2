package resilience

import (
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "wrapped transient", err: NewTransientError(eris.New("boom")), want: true},
		{name: "plain error", err: eris.New("boom"), want: false},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "timeout message", err: eris.New("request failed: connection timed out"), want: true},
		{name: "idle connection closed", err: eris.New("http: server closed idle connection"), want: true},
		{name: "transport broken", err: eris.New("net/http: transport connection broken"), want: true},
		{name: "transient with status", err: NewTransientHTTPError(eris.New("boom"), 503), want: true},
		{name: "eris wrapped reset", err: eris.Wrap(syscall.ECONNRESET, "geocode: search"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	transient := []int{408, 429, 500, 502, 503, 504}
	for _, code := range transient {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 409, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
