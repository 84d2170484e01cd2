package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(CodeInvalidInput, "bad"), http.StatusBadRequest},
		{New(CodeUnauthorized, "who"), http.StatusUnauthorized},
		{New(CodeForbidden, "no"), http.StatusForbidden},
		{New(CodeNotFound, "gone"), http.StatusNotFound},
		{New(CodeConflict, "dup"), http.StatusConflict},
		{New(CodeUnprocessable, "below threshold"), http.StatusUnprocessableEntity},
		{Wrap(CodeModelFailed, "model", errors.New("503")), http.StatusBadGateway},
		{Wrap(CodeDatabaseFailed, "db", errors.New("conn")), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestWrapChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("upload: %w", Wrap(CodeStorageFailed, "could not store resume", cause))

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeStorageFailed, CodeOf(err))
	assert.Equal(t, "could not store resume", MessageOf(err))
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNotRetryable(t *testing.T) {
	assert.False(t, IsRetryable(New(CodeInvalidInput, "bad")))
	assert.False(t, IsRetryable(errors.New("x")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("secret detail")))
}
