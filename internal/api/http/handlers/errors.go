package handlers

import (
	"errors"

	"github.com/spec-kit/user-directory/internal/domain"
	apperrors "github.com/spec-kit/user-directory/pkg/util"
)

// toHTTPError maps directory errors onto the response envelope.
func toHTTPError(err error) error {
	var (
		validationErr *domain.ValidationError
		filterErr     *domain.InvalidFilterError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		storageErr    *domain.StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		return apperrors.NewValidationError(validationErr.Message, map[string]any{"field": validationErr.Field})
	case errors.As(err, &filterErr):
		return apperrors.NewInvalidFilter(filterErr.Error(), map[string]any{"gender": filterErr.Value})
	case errors.As(err, &notFoundErr):
		return apperrors.NewNotFound("user", map[string]any{"id": notFoundErr.ID.String()})
	case errors.As(err, &conflictErr):
		return apperrors.NewConflict(conflictErr.Error(), map[string]any{"id": conflictErr.ID.String()})
	case errors.Is(err, domain.ErrWriteNotAcknowledged):
		return apperrors.NewWriteFailed(err)
	case errors.As(err, &storageErr):
		return apperrors.NewStorageFailure(err)
	default:
		return err
	}
}
