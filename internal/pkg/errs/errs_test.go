package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResolvesKnownCode(t *testing.T) {
	err := NewError(ErrMessageNotFound)
	require.NotNil(t, err)

	assert.Equal(t, ErrMessageNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.NotEmpty(t, err.Message)
}

func TestNewErrorFormatsMessageTemplate(t *testing.T) {
	err := NewError(ErrAttachmentCountInvalid, 3)
	require.NotNil(t, err)

	assert.Contains(t, err.Message, "3")
}

func TestNewErrorFallsBackToUnknownCode(t *testing.T) {
	err := NewError(-1)
	require.NotNil(t, err)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCustomErrorImplementsError(t *testing.T) {
	err := NewError(ErrInvalidCredentials)

	assert.Contains(t, err.Error(), "Error Code")
}
