package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrValidation, "title is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "title is required", err.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	wrapped := fmt.Errorf("context: %w", ErrNetwork)
	assert.Equal(t, ErrNetwork.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}

func TestIsAuth(t *testing.T) {
	assert.True(t, IsAuth(ErrSessionExpired))
	assert.True(t, IsAuth(Clone(ErrInvalidCredentials, "bad password")))
	assert.False(t, IsAuth(ErrValidation))
	assert.False(t, IsAuth(fmt.Errorf("plain")))
}
