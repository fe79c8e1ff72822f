package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("handler: %w", NewConflict("taken", nil))
	got := ToDomainError(wrapped)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)

	got = ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, "METHOD_NOT_ALLOWED", got.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, got.HTTPStatus)

	cause := errors.New("boom")
	got = ToDomainError(cause)
	assert.Equal(t, NewInternalError(cause), got)
	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.ErrorIs(t, got, cause)
}

func TestStorageFailureHidesCauseInMessage(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:5432: refused")
	err := ToDomainError(NewStorageFailure(cause))

	assert.Equal(t, "storage unavailable", err.Message)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}
