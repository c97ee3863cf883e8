package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeNotFound, "route missing"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("foreign errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeServiceUnavailable, "annotation repository unavailable")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "service_unavailable: annotation repository unavailable: dial tcp: refused", err.Error())
}

func TestWithTraceIDDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeConflict, "revision mismatch")
	tagged := base.WithTraceID("trace-1")

	assert.Empty(t, base.TraceID)
	assert.Equal(t, "trace-1", tagged.TraceID)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidRequest:     http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}
