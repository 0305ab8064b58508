package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "no group")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeValidation, "bad record"))
	assert.Equal(t, CodeValidation, CodeOf(wrapped), "codes survive wrapping")
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "bad record", MessageOf(New(CodeValidation, "bad record")))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CodeInternal, "write group record")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "write group record")
	assert.Contains(t, err.Error(), "disk full")
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:          http.StatusBadRequest,
		CodeValidation:          http.StatusBadRequest,
		CodeUnresolvedReference: http.StatusBadRequest,
		CodeCyclicHierarchy:     http.StatusBadRequest,
		CodeNotFound:            http.StatusNotFound,
		CodeInternal:            http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
