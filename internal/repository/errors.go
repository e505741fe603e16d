package repository

import (
	"errors"

	apperrors "github.com/puskesmas-merdeka/simpus-api/pkg/errors"
)

// AppError converts the store sentinels into application errors naming
// resource. Other errors are returned unchanged.
func AppError(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.NewNotFound(resource, err)
	case errors.Is(err, ErrRevisionConflict):
		return apperrors.NewConflict(resource+" was changed by another request", err)
	}
	return err
}
