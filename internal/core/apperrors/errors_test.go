package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := NotFound("video %s not found", "abc")
	assert.Equal(t, "NOT_FOUND: video abc not found", err.Error())

	wrapped := Unavailable(context.DeadlineExceeded, "find videos")
	assert.Equal(t, "STORE_UNAVAILABLE: find videos: context deadline exceeded", wrapped.Error())
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("toggle: %w", Conflict("duplicate edge"))))
	assert.True(t, Is(InvalidOperation("self"), KindInvalidOperation))
	assert.False(t, Is(nil, KindNotFound))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("bad id"), http.StatusBadRequest},
		{InvalidOperation("self"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unavailable(errors.New("dial"), "db"), http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), "err=%v", c.err)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Conflict("dup")))
	assert.True(t, IsRetryable(Unavailable(errors.New("dial"), "db")))
	assert.False(t, IsRetryable(NotFound("x")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "missing", PublicMessage(NotFound("missing")))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("secret dsn leaked")))
	assert.Equal(t, "storage temporarily unavailable", PublicMessage(Unavailable(errors.New("dial tcp 10.0.0.5:5432"), "find users")))
}

func TestWithDetails(t *testing.T) {
	err := Validation("invalid request").WithDetails("page must be a number", "limit must be a number")
	assert.Equal(t, []string{"page must be a number", "limit must be a number"}, DetailsOf(err))
	assert.Nil(t, DetailsOf(errors.New("plain")))
}
